// Package dispatch routes alerts to the live channel and the notification history.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
)

type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeQueued    Outcome = "queued"
	OutcomeFailed    Outcome = "failed"
)

// LiveChannel pushes an alert to a connected client.
type LiveChannel interface {
	Deliver(ctx context.Context, alert *domain.Alert) error
}

type Dispatcher struct {
	repo     domain.NotificationRepository
	channel  LiveChannel
	metrics  *metrics.PipelineMetrics
	recorder domain.PipelineEventRecorder
	clock    clock.Clock
}

func NewDispatcher(
	repo domain.NotificationRepository,
	channel LiveChannel,
	pipelineMetrics *metrics.PipelineMetrics,
	recorder domain.PipelineEventRecorder,
	clk clock.Clock,
) *Dispatcher {
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &Dispatcher{
		repo:     repo,
		channel:  channel,
		metrics:  pipelineMetrics,
		recorder: recorder,
		clock:    clk,
	}
}

// Dispatch stores alert in the history and pushes it once over the live
// channel. A client that misses the push picks the alert up from history.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *domain.Alert) (Outcome, error) {
	ctx, span := tracing.StartDispatchSpan(ctx, alert.ID, string(alert.Type), string(alert.Tier))
	defer span.End()

	storeErr := d.repo.Save(ctx, alert)
	if storeErr != nil {
		slog.WarnContext(ctx, "failed to store alert",
			slog.String("alert_id", alert.ID),
			slog.String("username", alert.Username),
			slog.String("error", storeErr.Error()),
		)
	}

	pushErr := d.push(ctx, alert)

	var (
		outcome Outcome
		err     error
	)

	switch {
	case pushErr == nil:
		outcome = OutcomeDelivered
		alert.Delivered = true
		if storeErr == nil {
			if markErr := d.repo.MarkDelivered(ctx, alert.Username, alert.ID); markErr != nil {
				slog.WarnContext(ctx, "failed to flag alert delivered",
					slog.String("alert_id", alert.ID),
					slog.String("error", markErr.Error()),
				)
			}
		}
	case storeErr == nil:
		outcome = OutcomeQueued
		slog.DebugContext(ctx, "alert queued in history",
			slog.String("alert_id", alert.ID),
			slog.String("username", alert.Username),
			slog.String("reason", pushErr.Error()),
		)
	default:
		outcome = OutcomeFailed
		err = fmt.Errorf("%w: store: %v, push: %v", ErrAlertLost, storeErr, pushErr)
		slog.ErrorContext(ctx, "alert lost",
			slog.String("alert_id", alert.ID),
			slog.String("username", alert.Username),
			slog.String("error", err.Error()),
		)
	}

	tracing.RecordDispatchResult(span, string(outcome), err)
	d.record(ctx, alert, outcome)

	return outcome, err
}

func (d *Dispatcher) push(ctx context.Context, alert *domain.Alert) error {
	if d.channel == nil {
		return ErrNoLiveChannel
	}
	return d.channel.Deliver(ctx, alert)
}

func (d *Dispatcher) record(ctx context.Context, alert *domain.Alert, outcome Outcome) {
	if d.metrics != nil {
		d.metrics.RecordAlert(ctx, string(alert.Type), string(alert.Tier), string(outcome))
	}

	if d.recorder == nil {
		return
	}

	event := domain.DispatchEvent{
		Username: alert.Username,
		AlertID:  alert.ID,
		Type:     string(alert.Type),
		Tier:     string(alert.Tier),
		Outcome:  string(outcome),
		At:       d.clock.Now(),
	}
	if err := d.recorder.RecordDispatch(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to record dispatch event",
			slog.String("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}
}

const testMessage = "🧪 Test notification - your notification system is working!"

// SendTestNotification pushes a throwaway alert over the live channel only.
// Nothing is stored, so a user without a live connection gets an error.
func (d *Dispatcher) SendTestNotification(ctx context.Context, username string) error {
	alert := domain.NewAlert(username, domain.NotificationTypeTest, testMessage, d.clock.Now())
	alert.WindowTitle = "Test Window"
	alert.DistractionCount = 1

	if err := d.push(ctx, alert); err != nil {
		return fmt.Errorf("send test notification: %w", err)
	}

	if d.metrics != nil {
		d.metrics.RecordAlert(ctx, string(alert.Type), string(alert.Tier), string(OutcomeDelivered))
	}
	return nil
}
