package domain

import "time"

type Reminder struct {
	ID        string
	Username  string
	Text      string
	Date      string // YYYY-MM-DD, empty means next occurrence
	LocalTime string // HH:MM
	FireAt    time.Time
	ArmedAt   time.Time
}

// Key identifies the reminder's one-shot job. Re-arming the same key replaces it.
func (r *Reminder) Key() string {
	return r.Username + "_" + r.ID
}

type ReminderOutcome string

const (
	ReminderArmed     ReminderOutcome = "armed"
	ReminderSkipped   ReminderOutcome = "skipped"
	ReminderFired     ReminderOutcome = "fired"
	ReminderCancelled ReminderOutcome = "cancelled"
)

type Preferences struct {
	Username       string
	CustomAudioRef string
}
