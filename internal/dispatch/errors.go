package dispatch

import "errors"

var (
	// ErrAlertLost means the alert was neither stored nor delivered.
	ErrAlertLost     = errors.New("alert could not be stored or delivered")
	ErrNoLiveChannel = errors.New("no live channel configured")
)
