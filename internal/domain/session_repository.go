package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=session_repository.go -destination=session_repository_mock.go -package=domain

type SessionRepository interface {
	Save(ctx context.Context, session *SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	ListByUser(ctx context.Context, username string, from, to time.Time) ([]*SessionRecord, error)
	ListUsers(ctx context.Context) ([]string, error)
}
