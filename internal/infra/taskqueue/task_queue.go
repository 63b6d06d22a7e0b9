package taskqueue

import "context"

//go:generate mockgen -source=task_queue.go -destination=mock.go -package=taskqueue

// TaskQueue schedules durable HTTP callbacks that fire reminders.
type TaskQueue interface {
	ScheduleReminderFire(ctx context.Context, task *ReminderFireTask) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID string) error
}
