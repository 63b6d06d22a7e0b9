package repository

import "errors"

var (
	ErrInvalidAlertData      = errors.New("invalid alert data")
	ErrInvalidSessionData    = errors.New("invalid session data")
	ErrInvalidOutcomeData    = errors.New("invalid outcome data")
	ErrInvalidPreferenceData = errors.New("invalid preference data")
	ErrInvalidReminderData   = errors.New("invalid reminder data")
)
