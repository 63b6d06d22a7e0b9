package live

import (
	"encoding/json"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type MessageType string

const (
	MessageNotification      MessageType = "notification"
	MessageHeartbeat         MessageType = "heartbeat"
	MessageHeartbeatResponse MessageType = "heartbeat_response"
	MessageTestNotification  MessageType = "test_notification"
	MessageSuperseded        MessageType = "superseded"
)

// Message is the frame exchanged over the live channel in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NotificationPayload is the data of a notification frame.
type NotificationPayload struct {
	ID               string    `json:"id"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	SoundType        string    `json:"sound_type"`
	CustomAudioRef   string    `json:"custom_audio_ref,omitempty"`
	SessionID        string    `json:"session_id,omitempty"`
	WindowTitle      string    `json:"window_title,omitempty"`
	DistractionCount int       `json:"distraction_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewNotificationMessage(alert *domain.Alert) (Message, error) {
	data, err := json.Marshal(PayloadFromAlert(alert))
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:      MessageNotification,
		Timestamp: alert.CreatedAt,
		Data:      data,
	}, nil
}

func PayloadFromAlert(alert *domain.Alert) NotificationPayload {
	return NotificationPayload{
		ID:               alert.ID,
		NotificationType: string(alert.Type),
		Message:          alert.Message,
		SoundType:        string(alert.Tier),
		CustomAudioRef:   alert.CustomAudioRef,
		SessionID:        alert.SessionID,
		WindowTitle:      alert.WindowTitle,
		DistractionCount: alert.DistractionCount,
		CreatedAt:        alert.CreatedAt,
	}
}

func (m Message) Notification() (*NotificationPayload, error) {
	var p NotificationPayload
	if err := json.Unmarshal(m.Data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
