package reminder

import (
	"context"
	"time"
)

// Job is one armed reminder fire.
type Job struct {
	Key      string
	Username string
	FireAt   time.Time
}

type FireFunc func(ctx context.Context, job Job)

// Backend holds pending one-shot jobs. Schedule for a key that is already
// pending replaces it.
type Backend interface {
	Schedule(ctx context.Context, job Job) error
	Cancel(ctx context.Context, job Job) error
}

// binder is implemented by backends that fire jobs in-process.
type binder interface {
	Bind(fire FireFunc)
}
