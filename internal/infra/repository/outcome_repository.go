package repository

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const (
	outcomeTTL        = 400 * 24 * time.Hour // 400 days
	streakNotifiedTTL = 48 * time.Hour
)

type outcomeRepository struct {
	client *redis.Client
}

func NewOutcomeRepository(client *redis.Client) domain.OutcomeRepository {
	return &outcomeRepository{
		client: client,
	}
}

func (r *outcomeRepository) SaveOutcome(ctx context.Context, username string, outcome *domain.DailyOutcome) error {
	if outcome == nil || outcome.Date == "" {
		return ErrInvalidOutcomeData
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return ErrInvalidOutcomeData
	}

	key := outcomeKeyPrefix + username

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, outcome.Date, data)
	pipe.Expire(ctx, key, outcomeTTL)

	_, err = pipe.Exec(ctx)
	return err
}

// ListOutcomes returns every stored outcome ordered by date.
func (r *outcomeRepository) ListOutcomes(ctx context.Context, username string) ([]*domain.DailyOutcome, error) {
	fields, err := r.client.HGetAll(ctx, outcomeKeyPrefix+username).Result()
	if err != nil {
		return nil, err
	}

	outcomes := make([]*domain.DailyOutcome, 0, len(fields))
	for _, v := range fields {
		var o domain.DailyOutcome
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, ErrInvalidOutcomeData
		}
		outcomes = append(outcomes, &o)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Date < outcomes[j].Date
	})
	return outcomes, nil
}

func (r *outcomeRepository) MarkStreakNotified(ctx context.Context, username, date string) (bool, error) {
	return r.client.SetNX(ctx, streakNotifiedKeyPrefix+username+":"+date, 1, streakNotifiedTTL).Result()
}
