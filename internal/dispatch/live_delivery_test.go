package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/live"
)

type brokenWriter struct{}

func (brokenWriter) WriteMessage(live.Message) error { return errors.New("broken pipe") }
func (brokenWriter) Close() error                    { return nil }

func TestDispatchFailedLiveWriteStaysUndelivered(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	repo := domain.NewMockNotificationRepository(ctrl)

	alert := domain.NewAlert("alice", domain.NotificationTypeDistraction, "focus", now)
	repo.EXPECT().Save(gomock.Any(), alert).Return(nil)
	repo.EXPECT().MarkDelivered(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	registry := live.NewRegistry(time.Minute, nil)
	conn := live.NewConn("alice", brokenWriter{}, 4, now)
	registry.Register(conn)
	conn.Start()

	d := NewDispatcher(repo, registry, nil, nil, clock.Fixed(now))

	outcome, err := d.Dispatch(context.Background(), alert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeQueued {
		t.Errorf("expected outcome %s, got %s", OutcomeQueued, outcome)
	}
	if alert.Delivered {
		t.Error("alert must not be flagged delivered when the write failed")
	}
	if conn.CloseReason() != live.ReasonWriteError {
		t.Errorf("expected close reason %q, got %q", live.ReasonWriteError, conn.CloseReason())
	}
}
