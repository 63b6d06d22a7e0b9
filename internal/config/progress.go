package config

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	timezoneEnv       = "TIMEZONE"
	rollupScheduleEnv = "ROLLUP_SCHEDULE"

	defaultTimezone       = "Local"
	defaultRollupSchedule = "5 0 * * *"
)

type ProgressConfig struct {
	Location       *time.Location
	RollupSchedule string
}

func LoadProgressConfig() (*ProgressConfig, error) {
	name := os.Getenv(timezoneEnv)
	if name == "" {
		name = defaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrInvalidTimezone
	}

	schedule := os.Getenv(rollupScheduleEnv)
	if schedule == "" {
		schedule = defaultRollupSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, ErrInvalidRollupSchedule
	}

	return &ProgressConfig{
		Location:       loc,
		RollupSchedule: schedule,
	}, nil
}
