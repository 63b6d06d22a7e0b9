package domain

import "context"

//go:generate mockgen -source=outcome_repository.go -destination=outcome_repository_mock.go -package=domain

type OutcomeRepository interface {
	SaveOutcome(ctx context.Context, username string, outcome *DailyOutcome) error
	ListOutcomes(ctx context.Context, username string) ([]*DailyOutcome, error)
	// MarkStreakNotified returns true only for the first caller per user and date.
	MarkStreakNotified(ctx context.Context, username, date string) (bool, error)
}
