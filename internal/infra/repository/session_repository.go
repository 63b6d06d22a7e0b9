package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const sessionTTL = 90 * 24 * time.Hour // 90 days

type sessionRecord struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	TaskDescription   string    `json:"task_description"`
	Keywords          []string  `json:"keywords,omitempty"`
	DurationMinutes   int       `json:"duration_minutes"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at,omitzero"`
	Completed         bool      `json:"completed"`
	DistractionCount  int       `json:"distraction_count"`
	ProductivityScore float64   `json:"productivity_score"`
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) domain.SessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.SessionRecord) error {
	if session == nil || session.ID == "" || session.Username == "" {
		return ErrInvalidSessionData
	}

	data, err := json.Marshal(sessionRecord{
		ID:                session.ID,
		Username:          session.Username,
		TaskDescription:   session.TaskDescription,
		Keywords:          session.Keywords,
		DurationMinutes:   session.DurationMinutes,
		StartedAt:         session.StartedAt,
		EndedAt:           session.EndedAt,
		Completed:         session.Completed,
		DistractionCount:  session.DistractionCount,
		ProductivityScore: session.ProductivityScore,
	})
	if err != nil {
		return ErrInvalidSessionData
	}

	indexKey := sessionIndexKeyPrefix + session.Username

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, data, sessionTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(session.StartedAt.UnixMilli()), Member: session.ID})
	pipe.Expire(ctx, indexKey, sessionTTL)
	pipe.SAdd(ctx, usersKey, session.Username)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	return decodeSession(data)
}

// ListByUser returns sessions started in [from, to), oldest first.
func (r *sessionRepository) ListByUser(ctx context.Context, username string, from, to time.Time) ([]*domain.SessionRecord, error) {
	ids, err := r.client.ZRangeByScore(ctx, sessionIndexKeyPrefix+username, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: "(" + strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.SessionRecord, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		session, err := decodeSession([]byte(s))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (r *sessionRepository) ListUsers(ctx context.Context) ([]string, error) {
	users, err := r.client.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(users)
	return users, nil
}

func decodeSession(data []byte) (*domain.SessionRecord, error) {
	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidSessionData
	}

	return &domain.SessionRecord{
		ID:                record.ID,
		Username:          record.Username,
		TaskDescription:   record.TaskDescription,
		Keywords:          record.Keywords,
		DurationMinutes:   record.DurationMinutes,
		StartedAt:         record.StartedAt,
		EndedAt:           record.EndedAt,
		Completed:         record.Completed,
		DistractionCount:  record.DistractionCount,
		ProductivityScore: record.ProductivityScore,
	}, nil
}
