package domain

import "context"

//go:generate mockgen -source=notification_repository.go -destination=notification_repository_mock.go -package=domain

// NotificationRepository is the durable alert history a client pulls on load.
type NotificationRepository interface {
	Save(ctx context.Context, alert *Alert) error
	List(ctx context.Context, username string, limit int) ([]*Alert, error)
	MarkRead(ctx context.Context, username, id string) error
	MarkAllRead(ctx context.Context, username string) (int, error)
	MarkDelivered(ctx context.Context, username, id string) error
}
