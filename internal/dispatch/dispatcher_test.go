package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type stubChannel struct {
	err   error
	calls int
}

func (s *stubChannel) Deliver(_ context.Context, _ *domain.Alert) error {
	s.calls++
	return s.err
}

func TestDispatch(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	errStore := errors.New("redis down")
	errPush := errors.New("not connected")

	tests := []struct {
		name          string
		storeErr      error
		pushErr       error
		expectMark    bool
		wantOutcome   Outcome
		wantErr       error
		wantDelivered bool
	}{
		{
			name:          "stored and pushed",
			expectMark:    true,
			wantOutcome:   OutcomeDelivered,
			wantDelivered: true,
		},
		{
			name:        "stored but not connected",
			pushErr:     errPush,
			wantOutcome: OutcomeQueued,
		},
		{
			name:          "store failed but pushed",
			storeErr:      errStore,
			wantOutcome:   OutcomeDelivered,
			wantDelivered: true,
		},
		{
			name:        "store and push failed",
			storeErr:    errStore,
			pushErr:     errPush,
			wantOutcome: OutcomeFailed,
			wantErr:     ErrAlertLost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := domain.NewMockNotificationRepository(ctrl)

			alert := domain.NewAlert("alice", domain.NotificationTypeDistraction, "focus", now)

			repo.EXPECT().Save(gomock.Any(), alert).Return(tt.storeErr)
			if tt.expectMark {
				repo.EXPECT().MarkDelivered(gomock.Any(), "alice", alert.ID).Return(nil)
			}

			channel := &stubChannel{err: tt.pushErr}
			d := NewDispatcher(repo, channel, nil, nil, clock.Fixed(now))

			outcome, err := d.Dispatch(context.Background(), alert)

			if outcome != tt.wantOutcome {
				t.Errorf("expected outcome %s, got %s", tt.wantOutcome, outcome)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if channel.calls != 1 {
				t.Errorf("expected exactly one push attempt, got %d", channel.calls)
			}
			if alert.Delivered != tt.wantDelivered {
				t.Errorf("expected delivered=%v, got %v", tt.wantDelivered, alert.Delivered)
			}
		})
	}
}

type recordingRecorder struct {
	dispatches []domain.DispatchEvent
}

func (r *recordingRecorder) RecordVerdict(context.Context, domain.VerdictEvent) error { return nil }
func (r *recordingRecorder) RecordDispatch(_ context.Context, e domain.DispatchEvent) error {
	r.dispatches = append(r.dispatches, e)
	return nil
}
func (r *recordingRecorder) RecordDailyOutcome(context.Context, domain.DailyOutcomeEvent) error {
	return nil
}
func (r *recordingRecorder) Flush(context.Context) error { return nil }
func (r *recordingRecorder) Close() error                { return nil }

func TestDispatchRecordsEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(t)
	repo := domain.NewMockNotificationRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	recorder := &recordingRecorder{}
	d := NewDispatcher(repo, nil, nil, recorder, clock.Fixed(now))

	alert := domain.NewAlert("bob", domain.NotificationTypeReminder, "stretch", now)
	outcome, err := d.Dispatch(context.Background(), alert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeQueued {
		t.Fatalf("expected queued without a live channel, got %s", outcome)
	}

	if len(recorder.dispatches) != 1 {
		t.Fatalf("expected 1 dispatch event, got %d", len(recorder.dispatches))
	}
	got := recorder.dispatches[0]
	if got.Outcome != string(OutcomeQueued) || got.AlertID != alert.ID || !got.At.Equal(now) {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestSendTestNotificationSkipsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No repository calls are expected.
	repo := domain.NewMockNotificationRepository(ctrl)

	ch := &stubChannel{}
	d := NewDispatcher(repo, ch, nil, nil, clock.Fixed(time.Now()))

	if err := d.SendTestNotification(context.Background(), "alice"); err != nil {
		t.Fatalf("SendTestNotification() error = %v", err)
	}
	if ch.calls != 1 {
		t.Errorf("expected one push, got %d", ch.calls)
	}

	ch.err = errors.New("not connected")
	if err := d.SendTestNotification(context.Background(), "alice"); err == nil {
		t.Error("expected error without a live connection")
	}
}
