package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=reminder_repository.go -destination=reminder_repository_mock.go -package=domain

type ReminderRepository interface {
	SaveReminder(ctx context.Context, reminder *Reminder) error
	GetReminder(ctx context.Context, key string) (*Reminder, error)
	DeleteReminder(ctx context.Context, key string) error
	// MarkFired returns true only for the first fire of a key at the given time.
	MarkFired(ctx context.Context, key string, fireAt time.Time) (bool, error)
}
