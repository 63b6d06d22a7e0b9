package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrOutcomeNotFound      = errors.New("daily outcome not found")
	ErrInvalidLocalTime     = errors.New("local time must be HH:MM")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
)
