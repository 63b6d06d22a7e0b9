package domain

import (
	"context"
	"time"
)

type VerdictEvent struct {
	Username      string
	SessionID     string
	Category      string
	Source        string
	IsDistraction bool
	Confidence    float64
	Notified      bool
	ObservedAt    time.Time
}

type DispatchEvent struct {
	Username string
	AlertID  string
	Type     string
	Tier     string
	Outcome  string
	At       time.Time
}

type DailyOutcomeEvent struct {
	Username      string
	Outcome       DailyOutcome
	CurrentStreak int
	LongestStreak int
}

// PipelineEventRecorder ships pipeline events to an analytics sink.
type PipelineEventRecorder interface {
	RecordVerdict(ctx context.Context, event VerdictEvent) error
	RecordDispatch(ctx context.Context, event DispatchEvent) error
	RecordDailyOutcome(ctx context.Context, event DailyOutcomeEvent) error
	Flush(ctx context.Context) error
	Close() error
}
