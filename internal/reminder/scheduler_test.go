package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type recordingBackend struct {
	scheduled []Job
	cancelled []Job
}

func (b *recordingBackend) Schedule(_ context.Context, job Job) error {
	b.scheduled = append(b.scheduled, job)
	return nil
}

func (b *recordingBackend) Cancel(_ context.Context, job Job) error {
	b.cancelled = append(b.cancelled, job)
	return nil
}

type stubDispatcher struct {
	alerts []*domain.Alert
}

func (s *stubDispatcher) Dispatch(_ context.Context, alert *domain.Alert) (dispatch.Outcome, error) {
	s.alerts = append(s.alerts, alert)
	return dispatch.OutcomeDelivered, nil
}

func TestFireTime(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, loc)

	tests := []struct {
		name      string
		date      string
		localTime string
		want      time.Time
		wantErr   error
	}{
		{
			name:      "later today",
			localTime: "14:30",
			want:      time.Date(2025, 3, 1, 14, 30, 0, 0, loc),
		},
		{
			name:      "already passed rolls to tomorrow",
			localTime: "09:00",
			want:      time.Date(2025, 3, 2, 9, 0, 0, 0, loc),
		},
		{
			name:      "exactly now rolls to tomorrow",
			localTime: "10:00",
			want:      time.Date(2025, 3, 2, 10, 0, 0, 0, loc),
		},
		{
			name:      "explicit date",
			date:      "2025-03-05",
			localTime: "08:15",
			want:      time.Date(2025, 3, 5, 8, 15, 0, 0, loc),
		},
		{
			name:      "explicit past date is kept",
			date:      "2025-02-01",
			localTime: "08:15",
			want:      time.Date(2025, 2, 1, 8, 15, 0, 0, loc),
		},
		{
			name:      "bad time",
			localTime: "25:99",
			wantErr:   domain.ErrInvalidLocalTime,
		},
		{
			name:      "bad date",
			date:      "tomorrow",
			localTime: "08:00",
			wantErr:   domain.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FireTime(tt.date, tt.localTime, loc, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FireTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newScheduler(t *testing.T, now time.Time) (*Scheduler, *domain.MockReminderRepository, *recordingBackend, *stubDispatcher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	backend := &recordingBackend{}
	dispatcher := &stubDispatcher{}

	s := NewScheduler(repo, backend, dispatcher, nil, Config{Location: time.UTC, Grace: 2 * time.Minute}, clock.Fixed(now))
	return s, repo, backend, dispatcher
}

func TestSchedulerArm(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("past date is skipped", func(t *testing.T) {
		s, _, backend, _ := newScheduler(t, now)

		outcome, err := s.Arm(context.Background(), &domain.Reminder{
			ID: "r1", Username: "alice", Text: "standup", Date: "2025-03-01", LocalTime: "09:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != domain.ReminderSkipped {
			t.Errorf("expected skipped, got %s", outcome)
		}
		if len(backend.scheduled) != 0 {
			t.Error("skipped reminder must not be scheduled")
		}
	})

	t.Run("re-arm replaces pending job", func(t *testing.T) {
		s, repo, backend, _ := newScheduler(t, now)
		previous := &domain.Reminder{ID: "r1", Username: "alice", FireAt: now.Add(time.Hour)}

		repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(previous, nil)
		repo.EXPECT().SaveReminder(gomock.Any(), gomock.Any()).Return(nil)

		r := &domain.Reminder{ID: "r1", Username: "alice", Text: "standup", LocalTime: "12:00"}
		outcome, err := s.Arm(context.Background(), r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != domain.ReminderArmed {
			t.Fatalf("expected armed, got %s", outcome)
		}

		if len(backend.cancelled) != 1 || !backend.cancelled[0].FireAt.Equal(previous.FireAt) {
			t.Errorf("expected previous job to be cancelled, got %+v", backend.cancelled)
		}
		want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		if len(backend.scheduled) != 1 || !backend.scheduled[0].FireAt.Equal(want) {
			t.Errorf("expected job at %v, got %+v", want, backend.scheduled)
		}
		if !r.ArmedAt.Equal(now) {
			t.Errorf("expected armed at %v, got %v", now, r.ArmedAt)
		}
	})
}

func TestSchedulerFire(t *testing.T) {
	scheduledAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	armed := &domain.Reminder{ID: "r1", Username: "alice", Text: "stretch", FireAt: scheduledAt}

	t.Run("fires once", func(t *testing.T) {
		s, repo, _, dispatcher := newScheduler(t, scheduledAt.Add(5*time.Second))

		repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(armed, nil).Times(2)
		gomock.InOrder(
			repo.EXPECT().MarkFired(gomock.Any(), "alice_r1", scheduledAt).Return(true, nil),
			repo.EXPECT().MarkFired(gomock.Any(), "alice_r1", scheduledAt).Return(false, nil),
		)
		repo.EXPECT().DeleteReminder(gomock.Any(), "alice_r1").Return(nil)

		outcome, err := s.Fire(context.Background(), "alice_r1", scheduledAt)
		if err != nil || outcome != domain.ReminderFired {
			t.Fatalf("expected fired, got %s (%v)", outcome, err)
		}

		outcome, err = s.Fire(context.Background(), "alice_r1", scheduledAt)
		if err != nil || outcome != domain.ReminderSkipped {
			t.Fatalf("expected duplicate to be skipped, got %s (%v)", outcome, err)
		}

		if len(dispatcher.alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(dispatcher.alerts))
		}
		alert := dispatcher.alerts[0]
		if alert.Type != domain.NotificationTypeReminder || alert.Message != "⏰ Reminder: stretch" {
			t.Errorf("unexpected alert %+v", alert)
		}
	})

	t.Run("late fire is skipped", func(t *testing.T) {
		s, repo, _, dispatcher := newScheduler(t, scheduledAt.Add(10*time.Minute))

		repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(armed, nil)
		repo.EXPECT().DeleteReminder(gomock.Any(), "alice_r1").Return(nil)

		outcome, err := s.Fire(context.Background(), "alice_r1", scheduledAt)
		if err != nil || outcome != domain.ReminderSkipped {
			t.Fatalf("expected skipped, got %s (%v)", outcome, err)
		}
		if len(dispatcher.alerts) != 0 {
			t.Error("late reminder must not dispatch")
		}
	})

	t.Run("replaced arming is ignored", func(t *testing.T) {
		s, repo, _, dispatcher := newScheduler(t, scheduledAt)

		rearmed := *armed
		rearmed.FireAt = scheduledAt.Add(time.Hour)
		repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(&rearmed, nil)

		outcome, err := s.Fire(context.Background(), "alice_r1", scheduledAt)
		if err != nil || outcome != domain.ReminderSkipped {
			t.Fatalf("expected skipped, got %s (%v)", outcome, err)
		}
		if len(dispatcher.alerts) != 0 {
			t.Error("stale fire must not dispatch")
		}
	})

	t.Run("cancelled reminder", func(t *testing.T) {
		s, repo, _, _ := newScheduler(t, scheduledAt)

		repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(nil, domain.ErrReminderNotFound)

		if _, err := s.Fire(context.Background(), "alice_r1", scheduledAt); !errors.Is(err, domain.ErrReminderNotFound) {
			t.Errorf("expected ErrReminderNotFound, got %v", err)
		}
	})
}

func TestSchedulerCancel(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s, repo, backend, _ := newScheduler(t, now)

	r := &domain.Reminder{ID: "r1", Username: "alice", FireAt: now.Add(time.Hour)}
	repo.EXPECT().GetReminder(gomock.Any(), "alice_r1").Return(r, nil)
	repo.EXPECT().DeleteReminder(gomock.Any(), "alice_r1").Return(nil)

	if err := s.Cancel(context.Background(), "alice", "r1"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if len(backend.cancelled) != 1 || backend.cancelled[0].Key != "alice_r1" {
		t.Errorf("expected job to be cancelled, got %+v", backend.cancelled)
	}
}
