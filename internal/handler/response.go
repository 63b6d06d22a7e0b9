package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/live"
	"github.com/KasumiMercury/primind-focusguard/internal/pipeline"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: errType, Message: message})
}

// respondServiceError maps a component error onto a status and error type.
func respondServiceError(c *gin.Context, err error) {
	status, errType := classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		respondError(c, status, errType, "internal error")
		return
	}
	respondError(c, status, errType, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrReminderNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSessionAlreadyActive):
		return http.StatusConflict, "conflict"
	case errors.Is(err, pipeline.ErrSessionBusy):
		return http.StatusTooManyRequests, "session_busy"
	case errors.Is(err, pipeline.ErrSessionClosed):
		return http.StatusConflict, "session_closed"
	case errors.Is(err, pipeline.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidLocalTime),
		errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, live.ErrNotConnected),
		errors.Is(err, dispatch.ErrNoLiveChannel):
		return http.StatusNotFound, "not_connected"
	case errors.Is(err, live.ErrTokenRequired),
		errors.Is(err, live.ErrInvalidToken),
		errors.Is(err, live.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, pipeline.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		slog.WarnContext(c.Request.Context(), "request validation failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

// bearerToken reads the live token from the query or the Authorization header.
func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
