package reminder

import (
	"context"

	"github.com/KasumiMercury/primind-focusguard/internal/infra/taskqueue"
)

// QueueBackend arms jobs as task queue callbacks. The queue posts back to
// the fire endpoint, so jobs survive restarts.
type QueueBackend struct {
	queue taskqueue.TaskQueue
}

func NewQueueBackend(queue taskqueue.TaskQueue) *QueueBackend {
	return &QueueBackend{queue: queue}
}

func (b *QueueBackend) Schedule(ctx context.Context, job Job) error {
	_, err := b.queue.ScheduleReminderFire(ctx, &taskqueue.ReminderFireTask{
		TaskID:      taskqueue.TaskID(job.Key, job.FireAt),
		ScheduleAt:  job.FireAt,
		Key:         job.Key,
		Username:    job.Username,
		ScheduledAt: job.FireAt,
	})
	return err
}

func (b *QueueBackend) Cancel(ctx context.Context, job Job) error {
	return b.queue.DeleteTask(ctx, taskqueue.TaskID(job.Key, job.FireAt))
}
