package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const historyLimit = 50

type NotificationHandler struct {
	notifications domain.NotificationRepository
	preferences   domain.PreferenceRepository
}

func NewNotificationHandler(notifications domain.NotificationRepository, preferences domain.PreferenceRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, preferences: preferences}
}

type notificationResponse struct {
	ID               string    `json:"id"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	SoundType        string    `json:"sound_type"`
	CustomAudioRef   string    `json:"custom_audio_ref,omitempty"`
	SessionID        string    `json:"session_id,omitempty"`
	WindowTitle      string    `json:"window_title,omitempty"`
	DistractionCount int       `json:"distraction_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Read             bool      `json:"read"`
	Delivered        bool      `json:"delivered"`
}

type preferencesRequest struct {
	CustomAudioRef string `json:"custom_audio_ref"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	alerts, err := h.notifications.List(c.Request.Context(), c.Param("username"), historyLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]notificationResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, notificationResponse{
			ID:               a.ID,
			NotificationType: string(a.Type),
			Message:          a.Message,
			SoundType:        string(a.Tier),
			CustomAudioRef:   a.CustomAudioRef,
			SessionID:        a.SessionID,
			WindowTitle:      a.WindowTitle,
			DistractionCount: a.DistractionCount,
			CreatedAt:        a.CreatedAt,
			Read:             a.Read,
			Delivered:        a.Delivered,
		})
	}

	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("username"), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications marked as read", "updated": n})
}

// UpdatePreferences stores the custom audio reference verbatim.
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs := &domain.Preferences{Username: c.Param("username"), CustomAudioRef: req.CustomAudioRef}
	if err := h.preferences.SavePreferences(c.Request.Context(), prefs); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": prefs.Username, "custom_audio_ref": prefs.CustomAudioRef})
}
