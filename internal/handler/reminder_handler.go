package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/infra/taskqueue"
)

type ReminderScheduler interface {
	Arm(ctx context.Context, r *domain.Reminder) (domain.ReminderOutcome, error)
	Cancel(ctx context.Context, username, id string) error
	Fire(ctx context.Context, key string, scheduledAt time.Time) (domain.ReminderOutcome, error)
}

type ReminderHandler struct {
	scheduler ReminderScheduler
}

func NewReminderHandler(s ReminderScheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: s}
}

type reminderItem struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text" binding:"required"`
	Time string `json:"time" binding:"required"`
	Date string `json:"date"`
}

type armRemindersRequest struct {
	Reminders []reminderItem `json:"reminders" binding:"required,dive"`
}

type armResult struct {
	ID      string                 `json:"id"`
	Outcome domain.ReminderOutcome `json:"outcome"`
	FireAt  *time.Time             `json:"fire_at,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ArmReminders arms each reminder independently; one invalid entry does not
// block the others.
func (h *ReminderHandler) ArmReminders(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	var req armRemindersRequest
	if !bindJSON(c, &req) {
		return
	}

	results := make([]armResult, 0, len(req.Reminders))
	armed := 0
	for _, item := range req.Reminders {
		r := &domain.Reminder{
			ID:        item.ID,
			Username:  username,
			Text:      item.Text,
			Date:      item.Date,
			LocalTime: item.Time,
		}

		outcome, err := h.scheduler.Arm(ctx, r)
		if err != nil {
			slog.WarnContext(ctx, "failed to arm reminder",
				slog.String("username", username),
				slog.String("reminder_id", item.ID),
				slog.String("error", err.Error()),
			)
			results = append(results, armResult{ID: item.ID, Error: err.Error()})
			continue
		}

		res := armResult{ID: item.ID, Outcome: outcome}
		if outcome == domain.ReminderArmed {
			fireAt := r.FireAt
			res.FireAt = &fireAt
			armed++
		}
		results = append(results, res)
	}

	c.JSON(http.StatusOK, gin.H{"armed": armed, "results": results})
}

func (h *ReminderHandler) CancelReminder(c *gin.Context) {
	if err := h.scheduler.Cancel(c.Request.Context(), c.Param("username"), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": domain.ReminderCancelled})
}

// Fire is the durable timer callback. Skips and duplicates answer 200 so the
// queue does not retry them.
func (h *ReminderHandler) Fire(c *gin.Context) {
	ctx := c.Request.Context()

	var task taskqueue.ReminderFireTask
	if !bindJSON(c, &task) {
		return
	}
	if task.Key == "" || task.ScheduledAt.IsZero() {
		respondError(c, http.StatusBadRequest, "validation_error", "key and scheduled_at are required")
		return
	}

	outcome, err := h.scheduler.Fire(ctx, task.Key, task.ScheduledAt)
	if err != nil {
		status, errType := classify(err)
		if status == http.StatusNotFound {
			slog.InfoContext(ctx, "fire for unknown reminder",
				slog.String("key", task.Key),
			)
			c.JSON(http.StatusOK, gin.H{"outcome": domain.ReminderSkipped})
			return
		}
		respondError(c, status, errType, "failed to fire reminder")
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
