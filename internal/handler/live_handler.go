package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LiveServer interface {
	Authorize(username, token string) error
	Serve(w http.ResponseWriter, r *http.Request, username string)
}

type TestNotifier interface {
	SendTestNotification(ctx context.Context, username string) error
}

type LiveHandler struct {
	server LiveServer
	tester TestNotifier
}

func NewLiveHandler(server LiveServer, tester TestNotifier) *LiveHandler {
	return &LiveHandler{server: server, tester: tester}
}

func (h *LiveHandler) Connect(c *gin.Context) {
	username := c.Param("username")

	if err := h.server.Authorize(username, bearerToken(c)); err != nil {
		slog.WarnContext(c.Request.Context(), "live channel rejected",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		respondServiceError(c, err)
		return
	}

	h.server.Serve(c.Writer, c.Request, username)
}

func (h *LiveHandler) TestNotification(c *gin.Context) {
	username := c.Param("username")

	if err := h.tester.SendTestNotification(c.Request.Context(), username); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent to " + username})
}
