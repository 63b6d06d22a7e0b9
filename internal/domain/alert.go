package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeDistraction NotificationType = "distraction"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeStreak      NotificationType = "streak"
	NotificationTypeTest        NotificationType = "test"
)

// Tier selects the sound a client plays for an alert.
type Tier string

const (
	TierDefault   Tier = "default"
	TierEscalated Tier = "escalated"
)

type Alert struct {
	ID               string
	Username         string
	SessionID        string
	Type             NotificationType
	Message          string
	Tier             Tier
	CustomAudioRef   string
	WindowTitle      string
	DistractionCount int
	CreatedAt        time.Time
	Read             bool
	Delivered        bool
}

func NewAlert(username string, typ NotificationType, message string, now time.Time) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		Username:  username,
		Type:      typ,
		Message:   message,
		Tier:      TierDefault,
		CreatedAt: now,
	}
}
