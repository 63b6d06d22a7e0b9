package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

// reminderRetention keeps a reminder around after its fire time so late
// callbacks still resolve it.
const reminderRetention = 24 * time.Hour

type reminderRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Date      string    `json:"date,omitempty"`
	LocalTime string    `json:"local_time"`
	FireAt    time.Time `json:"fire_at"`
	ArmedAt   time.Time `json:"armed_at"`
}

type reminderRepository struct {
	client *redis.Client
}

func NewReminderRepository(client *redis.Client) domain.ReminderRepository {
	return &reminderRepository{
		client: client,
	}
}

func (r *reminderRepository) SaveReminder(ctx context.Context, reminder *domain.Reminder) error {
	if reminder == nil || reminder.ID == "" || reminder.Username == "" || reminder.FireAt.IsZero() {
		return ErrInvalidReminderData
	}

	data, err := json.Marshal(reminderRecord{
		ID:        reminder.ID,
		Username:  reminder.Username,
		Text:      reminder.Text,
		Date:      reminder.Date,
		LocalTime: reminder.LocalTime,
		FireAt:    reminder.FireAt,
		ArmedAt:   reminder.ArmedAt,
	})
	if err != nil {
		return ErrInvalidReminderData
	}

	ttl := time.Until(reminder.FireAt) + reminderRetention
	if ttl < reminderRetention {
		ttl = reminderRetention
	}

	return r.client.Set(ctx, reminderKeyPrefix+reminder.Key(), data, ttl).Err()
}

func (r *reminderRepository) GetReminder(ctx context.Context, key string) (*domain.Reminder, error) {
	data, err := r.client.Get(ctx, reminderKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrReminderNotFound
		}
		return nil, err
	}

	var record reminderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidReminderData
	}

	return &domain.Reminder{
		ID:        record.ID,
		Username:  record.Username,
		Text:      record.Text,
		Date:      record.Date,
		LocalTime: record.LocalTime,
		FireAt:    record.FireAt,
		ArmedAt:   record.ArmedAt,
	}, nil
}

func (r *reminderRepository) DeleteReminder(ctx context.Context, key string) error {
	return r.client.Del(ctx, reminderKeyPrefix+key).Err()
}

func (r *reminderRepository) MarkFired(ctx context.Context, key string, fireAt time.Time) (bool, error) {
	firedKey := reminderFiredKeyPrefix + key + ":" + strconv.FormatInt(fireAt.Unix(), 10)
	return r.client.SetNX(ctx, firedKey, 1, reminderRetention).Result()
}
