package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const (
	notificationTTL        = 30 * 24 * time.Hour // 30 days
	maxNotificationHistory = 200
)

type alertRecord struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	SessionID        string    `json:"session_id,omitempty"`
	Type             string    `json:"type"`
	Message          string    `json:"message"`
	Tier             string    `json:"tier"`
	CustomAudioRef   string    `json:"custom_audio_ref,omitempty"`
	WindowTitle      string    `json:"window_title,omitempty"`
	DistractionCount int       `json:"distraction_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Read             bool      `json:"read"`
	Delivered        bool      `json:"delivered"`
}

func toAlertRecord(a *domain.Alert) alertRecord {
	return alertRecord{
		ID:               a.ID,
		Username:         a.Username,
		SessionID:        a.SessionID,
		Type:             string(a.Type),
		Message:          a.Message,
		Tier:             string(a.Tier),
		CustomAudioRef:   a.CustomAudioRef,
		WindowTitle:      a.WindowTitle,
		DistractionCount: a.DistractionCount,
		CreatedAt:        a.CreatedAt,
		Read:             a.Read,
		Delivered:        a.Delivered,
	}
}

func (r alertRecord) toDomain() *domain.Alert {
	return &domain.Alert{
		ID:               r.ID,
		Username:         r.Username,
		SessionID:        r.SessionID,
		Type:             domain.NotificationType(r.Type),
		Message:          r.Message,
		Tier:             domain.Tier(r.Tier),
		CustomAudioRef:   r.CustomAudioRef,
		WindowTitle:      r.WindowTitle,
		DistractionCount: r.DistractionCount,
		CreatedAt:        r.CreatedAt,
		Read:             r.Read,
		Delivered:        r.Delivered,
	}
}

type notificationRepository struct {
	client *redis.Client
}

func NewNotificationRepository(client *redis.Client) domain.NotificationRepository {
	return &notificationRepository{
		client: client,
	}
}

func notificationKey(username, id string) string {
	return notificationKeyPrefix + username + ":" + id
}

func (r *notificationRepository) Save(ctx context.Context, alert *domain.Alert) error {
	if alert == nil || alert.ID == "" || alert.Username == "" {
		return ErrInvalidAlertData
	}

	data, err := json.Marshal(toAlertRecord(alert))
	if err != nil {
		return ErrInvalidAlertData
	}

	indexKey := notificationIndexKeyPrefix + alert.Username

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, notificationKey(alert.Username, alert.ID), data, notificationTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(alert.CreatedAt.UnixMilli()), Member: alert.ID})
	pipe.ZRemRangeByRank(ctx, indexKey, 0, -maxNotificationHistory-1)
	pipe.Expire(ctx, indexKey, notificationTTL)

	_, err = pipe.Exec(ctx)
	return err
}

// List returns up to limit alerts, newest first.
func (r *notificationRepository) List(ctx context.Context, username string, limit int) ([]*domain.Alert, error) {
	if limit <= 0 {
		return []*domain.Alert{}, nil
	}

	ids, err := r.client.ZRevRange(ctx, notificationIndexKeyPrefix+username, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	return r.load(ctx, username, ids)
}

func (r *notificationRepository) load(ctx context.Context, username string, ids []string) ([]*domain.Alert, error) {
	alerts := make([]*domain.Alert, 0, len(ids))
	if len(ids) == 0 {
		return alerts, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, notificationKey(username, id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // expired
		}

		var record alertRecord
		if err := json.Unmarshal([]byte(s), &record); err != nil {
			return nil, ErrInvalidAlertData
		}
		alerts = append(alerts, record.toDomain())
	}

	return alerts, nil
}

func (r *notificationRepository) get(ctx context.Context, username, id string) (*alertRecord, error) {
	data, err := r.client.Get(ctx, notificationKey(username, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}

	var record alertRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidAlertData
	}
	return &record, nil
}

func (r *notificationRepository) update(ctx context.Context, username, id string, mutate func(*alertRecord)) error {
	record, err := r.get(ctx, username, id)
	if err != nil {
		return err
	}

	mutate(record)

	data, err := json.Marshal(record)
	if err != nil {
		return ErrInvalidAlertData
	}

	return r.client.SetArgs(ctx, notificationKey(username, id), data, redis.SetArgs{KeepTTL: true}).Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, username, id string) error {
	return r.update(ctx, username, id, func(rec *alertRecord) { rec.Read = true })
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, username, id string) error {
	return r.update(ctx, username, id, func(rec *alertRecord) { rec.Delivered = true })
}

// MarkAllRead flags every unread alert in the history and returns how many changed.
func (r *notificationRepository) MarkAllRead(ctx context.Context, username string) (int, error) {
	ids, err := r.client.ZRange(ctx, notificationIndexKeyPrefix+username, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	alerts, err := r.load(ctx, username, ids)
	if err != nil {
		return 0, err
	}

	pipe := r.client.TxPipeline()
	changed := 0
	for _, a := range alerts {
		if a.Read {
			continue
		}
		a.Read = true

		data, err := json.Marshal(toAlertRecord(a))
		if err != nil {
			return 0, ErrInvalidAlertData
		}
		pipe.SetArgs(ctx, notificationKey(username, a.ID), data, redis.SetArgs{KeepTTL: true})
		changed++
	}

	if changed == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return changed, nil
}
