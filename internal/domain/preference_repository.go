package domain

import "context"

//go:generate mockgen -source=preference_repository.go -destination=preference_repository_mock.go -package=domain

type PreferenceRepository interface {
	GetPreferences(ctx context.Context, username string) (*Preferences, error)
	SavePreferences(ctx context.Context, prefs *Preferences) error
}
