package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/pipeline"
)

type SessionPipeline interface {
	StartSession(ctx context.Context, req pipeline.StartRequest) (*domain.SessionRecord, error)
	Observe(ctx context.Context, obs domain.Observation) (*pipeline.Result, error)
	CompleteSession(ctx context.Context, sessionID string, req pipeline.CompleteRequest) (*domain.SessionRecord, error)
	CancelSession(ctx context.Context, sessionID string) (*domain.SessionRecord, error)
	DistractionStats(username string) pipeline.DistractionStats
}

type TokenIssuer interface {
	Issue(username, sessionID string) string
}

type SessionHandler struct {
	pipeline SessionPipeline
	tokens   TokenIssuer
}

func NewSessionHandler(p SessionPipeline, tokens TokenIssuer) *SessionHandler {
	return &SessionHandler{pipeline: p, tokens: tokens}
}

type startSessionRequest struct {
	Username        string   `json:"username" binding:"required"`
	TaskDescription string   `json:"task_description"`
	Keywords        []string `json:"keywords"`
	DurationMinutes int      `json:"duration_minutes" binding:"min=0"`
}

type startSessionResponse struct {
	SessionID string    `json:"session_id"`
	LiveToken string    `json:"live_token,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type activityRequest struct {
	WindowTitle string     `json:"window_title"`
	ObservedAt  *time.Time `json:"observed_at"`
}

type activityResponse struct {
	Category         domain.Category  `json:"category"`
	IsDistraction    bool             `json:"is_distraction"`
	Confidence       float64          `json:"confidence"`
	Sentiment        domain.Sentiment `json:"sentiment"`
	SentimentScore   float64          `json:"sentiment_score"`
	Reasoning        string           `json:"reasoning"`
	Source           string           `json:"source"`
	NotificationSent bool             `json:"notification_sent"`
	DispatchOutcome  dispatch.Outcome `json:"dispatch_outcome,omitempty"`
}

type completeSessionRequest struct {
	DistractionCount  *int     `json:"distraction_count"`
	ProductivityScore *float64 `json:"productivity_score"`
}

type sessionResponse struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	TaskDescription   string    `json:"task_description"`
	DurationMinutes   int       `json:"duration_minutes"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at"`
	Completed         bool      `json:"completed"`
	DistractionCount  int       `json:"distraction_count"`
	ProductivityScore float64   `json:"productivity_score"`
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.pipeline.StartSession(c.Request.Context(), pipeline.StartRequest{
		Username:        req.Username,
		TaskDescription: req.TaskDescription,
		Keywords:        req.Keywords,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := startSessionResponse{SessionID: session.ID, StartedAt: session.StartedAt}
	if h.tokens != nil {
		resp.LiveToken = h.tokens.Issue(session.Username, session.ID)
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *SessionHandler) ObserveActivity(c *gin.Context) {
	ctx := c.Request.Context()

	var req activityRequest
	if !bindJSON(c, &req) {
		return
	}

	obs := domain.Observation{SessionID: c.Param("id"), WindowTitle: req.WindowTitle}
	if req.ObservedAt != nil {
		obs.ObservedAt = *req.ObservedAt
	}

	res, err := h.pipeline.Observe(ctx, obs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if res.Verdict.IsDistraction {
		slog.InfoContext(ctx, "distraction detected",
			slog.String("session_id", obs.SessionID),
			slog.String("category", res.Verdict.Category.String()),
			slog.Bool("notification_sent", res.NotificationSent),
		)
	}

	c.JSON(http.StatusOK, activityResponse{
		Category:         res.Verdict.Category,
		IsDistraction:    res.Verdict.IsDistraction,
		Confidence:       res.Verdict.Confidence,
		Sentiment:        res.Verdict.Sentiment,
		SentimentScore:   res.Verdict.SentimentScore,
		Reasoning:        res.Verdict.Reasoning,
		Source:           string(res.Verdict.Source),
		NotificationSent: res.NotificationSent,
		DispatchOutcome:  res.Outcome,
	})
}

func (h *SessionHandler) CompleteSession(c *gin.Context) {
	var req completeSessionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	session, err := h.pipeline.CompleteSession(c.Request.Context(), c.Param("id"), pipeline.CompleteRequest{
		DistractionCount:  req.DistractionCount,
		ProductivityScore: req.ProductivityScore,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) CancelSession(c *gin.Context) {
	session, err := h.pipeline.CancelSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) DistractionStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.pipeline.DistractionStats(c.Param("username")))
}

func toSessionResponse(s *domain.SessionRecord) sessionResponse {
	return sessionResponse{
		ID:                s.ID,
		Username:          s.Username,
		TaskDescription:   s.TaskDescription,
		DurationMinutes:   s.DurationMinutes,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		Completed:         s.Completed,
		DistractionCount:  s.DistractionCount,
		ProductivityScore: s.ProductivityScore,
	}
}
