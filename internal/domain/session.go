package domain

import "time"

type Observation struct {
	SessionID   string
	WindowTitle string
	ObservedAt  time.Time
}

type SessionRecord struct {
	ID                string
	Username          string
	TaskDescription   string
	Keywords          []string
	DurationMinutes   int
	StartedAt         time.Time
	EndedAt           time.Time
	Completed         bool
	DistractionCount  int
	ProductivityScore float64
}
