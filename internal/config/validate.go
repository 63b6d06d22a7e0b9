package config

import (
	"errors"
	"strconv"
)

func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Live.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Classifier.Timeout <= 0 {
		errs = append(errs, ErrInvalidClassifierTimeout)
	}
	if cfg.Pipeline.MaxConcurrentClassifications <= 0 {
		errs = append(errs, ErrInvalidConcurrencyLimit)
	}
	if cfg.Progress.RollupSchedule == "" {
		errs = append(errs, ErrInvalidRollupSchedule)
	}
	if cfg.Reminder.Grace <= 0 {
		errs = append(errs, ErrInvalidReminderGraceWindow)
	}

	return errors.Join(errs...)
}

func atoiOr(raw string, def int) int {
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
