package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/progress"
)

const maxReportDays = 366

type ProgressReader interface {
	Progress(ctx context.Context, username string, days int) (*progress.Report, error)
	Recompute(ctx context.Context, username string) (domain.StreakState, error)
}

type ProgressHandler struct {
	progress ProgressReader
}

func NewProgressHandler(p ProgressReader) *ProgressHandler {
	return &ProgressHandler{progress: p}
}

func (h *ProgressHandler) Progress(c *gin.Context) {
	days := progress.DefaultReportDays
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxReportDays {
			respondError(c, http.StatusBadRequest, "validation_error", "days must be between 1 and 366")
			return
		}
		days = parsed
	}

	report, err := h.progress.Progress(c.Request.Context(), c.Param("username"), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ProgressHandler) Streak(c *gin.Context) {
	username := c.Param("username")

	streak, err := h.progress.Recompute(c.Request.Context(), username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":       username,
		"current_streak": streak.CurrentStreak,
		"longest_streak": streak.LongestStreak,
	})
}
