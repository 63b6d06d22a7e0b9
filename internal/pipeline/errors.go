package pipeline

import "errors"

var (
	// ErrSessionBusy means the session lane buffer is full.
	ErrSessionBusy   = errors.New("session is busy, retry later")
	ErrSessionClosed = errors.New("session closed")
	ErrStopped       = errors.New("pipeline stopped")
	ErrInvalidInput  = errors.New("invalid session input")
)
