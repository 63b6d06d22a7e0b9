package config

import "time"

const (
	reminderGraceSecondsEnv     = "REMINDER_GRACE_SECONDS"
	defaultReminderGraceSeconds = 120
)

type ReminderConfig struct {
	// Grace is how late a fire may run before it is reported as skipped.
	Grace time.Duration
}

func LoadReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		Grace: time.Duration(positiveIntEnv(reminderGraceSecondsEnv, defaultReminderGraceSeconds)) * time.Second,
	}
}
