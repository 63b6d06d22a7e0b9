package reminder

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-focusguard/internal/infra/taskqueue"
)

func TestTimerBackendFiresAndReplaces(t *testing.T) {
	b := NewTimerBackend(nil)
	fired := make(chan Job, 2)
	b.Bind(func(_ context.Context, job Job) { fired <- job })

	now := time.Now()
	first := Job{Key: "alice_r1", FireAt: now.Add(time.Hour)}
	second := Job{Key: "alice_r1", FireAt: now.Add(20 * time.Millisecond)}

	if err := b.Schedule(context.Background(), first); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := b.Schedule(context.Background(), second); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if b.Pending() != 1 {
		t.Fatalf("expected one pending job per key, got %d", b.Pending())
	}

	select {
	case job := <-fired:
		if !job.FireAt.Equal(second.FireAt) {
			t.Errorf("expected replacement job to fire, got %+v", job)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	if b.Pending() != 0 {
		t.Errorf("expected no pending jobs after fire, got %d", b.Pending())
	}
}

func TestTimerBackendCancel(t *testing.T) {
	b := NewTimerBackend(nil)
	fired := make(chan Job, 1)
	b.Bind(func(_ context.Context, job Job) { fired <- job })

	job := Job{Key: "bob_r1", FireAt: time.Now().Add(20 * time.Millisecond)}
	if err := b.Schedule(context.Background(), job); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := b.Cancel(context.Background(), job); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	select {
	case <-fired:
		t.Fatal("cancelled job fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerBackendRequiresBinding(t *testing.T) {
	b := NewTimerBackend(nil)
	if err := b.Schedule(context.Background(), Job{Key: "k", FireAt: time.Now()}); err != ErrNoBackend {
		t.Errorf("expected ErrNoBackend, got %v", err)
	}
}

func TestQueueBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := taskqueue.NewMockTaskQueue(ctrl)
	b := NewQueueBackend(queue)

	fireAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job := Job{Key: "alice_r1", Username: "alice", FireAt: fireAt}
	taskID := taskqueue.TaskID(job.Key, fireAt)

	queue.EXPECT().ScheduleReminderFire(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *taskqueue.ReminderFireTask) (*taskqueue.TaskResponse, error) {
			if task.TaskID != taskID || task.Key != "alice_r1" || !task.ScheduleAt.Equal(fireAt) {
				t.Errorf("unexpected task %+v", task)
			}
			return &taskqueue.TaskResponse{Name: taskID, ScheduleTime: fireAt}, nil
		})
	queue.EXPECT().DeleteTask(gomock.Any(), taskID).Return(nil)

	if err := b.Schedule(context.Background(), job); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := b.Cancel(context.Background(), job); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
}
