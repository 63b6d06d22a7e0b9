package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type preferenceRecord struct {
	CustomAudioRef string `json:"custom_audio_ref,omitempty"`
}

type preferenceRepository struct {
	client *redis.Client
}

func NewPreferenceRepository(client *redis.Client) domain.PreferenceRepository {
	return &preferenceRepository{
		client: client,
	}
}

// GetPreferences returns empty preferences for a user who never set any.
func (r *preferenceRepository) GetPreferences(ctx context.Context, username string) (*domain.Preferences, error) {
	data, err := r.client.Get(ctx, preferenceKeyPrefix+username).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.Preferences{Username: username}, nil
		}
		return nil, err
	}

	var record preferenceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidPreferenceData
	}

	return &domain.Preferences{
		Username:       username,
		CustomAudioRef: record.CustomAudioRef,
	}, nil
}

func (r *preferenceRepository) SavePreferences(ctx context.Context, prefs *domain.Preferences) error {
	if prefs == nil || prefs.Username == "" {
		return ErrInvalidPreferenceData
	}

	data, err := json.Marshal(preferenceRecord{CustomAudioRef: prefs.CustomAudioRef})
	if err != nil {
		return ErrInvalidPreferenceData
	}

	return r.client.Set(ctx, preferenceKeyPrefix+prefs.Username, data, 0).Err()
}
