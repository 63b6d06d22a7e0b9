package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
)

const rollupStopTimeout = 30 * time.Second

type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *domain.Alert) (dispatch.Outcome, error)
}

// Rollup materializes the previous day for every known user on a cron
// schedule and sends milestone streak alerts.
type Rollup struct {
	aggregator *Aggregator
	sessions   domain.SessionRepository
	outcomes   domain.OutcomeRepository
	dispatcher AlertDispatcher
	recorder   domain.PipelineEventRecorder
	clock      clock.Clock
	schedule   string
	cron       *cron.Cron
}

func NewRollup(
	aggregator *Aggregator,
	sessions domain.SessionRepository,
	outcomes domain.OutcomeRepository,
	dispatcher AlertDispatcher,
	recorder domain.PipelineEventRecorder,
	schedule string,
	clk clock.Clock,
) *Rollup {
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &Rollup{
		aggregator: aggregator,
		sessions:   sessions,
		outcomes:   outcomes,
		dispatcher: dispatcher,
		recorder:   recorder,
		clock:      clk,
		schedule:   schedule,
		cron:       cron.New(cron.WithLocation(aggregator.Location())),
	}
}

func (r *Rollup) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.RunOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "day rollup failed",
				slog.String("event", "rollup.failed"),
				slog.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rollup schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	slog.Info("day rollup scheduled",
		slog.String("schedule", r.schedule),
		slog.String("timezone", r.aggregator.Location().String()),
	)
	return nil
}

// Stop waits for a running rollup to finish, bounded by a timeout.
func (r *Rollup) Stop() {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(rollupStopTimeout):
		slog.Warn("day rollup did not stop in time")
	}
}

// RunOnce rolls up yesterday in the aggregator's location.
func (r *Rollup) RunOnce(ctx context.Context) error {
	date := r.clock.Now().In(r.aggregator.Location()).AddDate(0, 0, -1).Format(domain.DateLayout)
	return r.RollupDate(ctx, date)
}

func (r *Rollup) RollupDate(ctx context.Context, date string) error {
	ctx, span := tracing.StartRollupSpan(ctx, date)
	defer span.End()

	users, err := r.sessions.ListUsers(ctx)
	if err != nil {
		err = fmt.Errorf("list users: %w", err)
		tracing.RecordResult(span, err)
		return err
	}

	failed := 0
	for _, username := range users {
		if ctx.Err() != nil {
			tracing.RecordResult(span, ctx.Err())
			return ctx.Err()
		}
		if err := r.rollupUser(ctx, username, date); err != nil {
			failed++
			slog.WarnContext(ctx, "day rollup failed for user",
				slog.String("username", username),
				slog.String("date", date),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ctx, "day rollup completed",
		slog.String("event", "rollup.completed"),
		slog.String("date", date),
		slog.Int("users", len(users)),
		slog.Int("failed", failed),
	)
	tracing.RecordResult(span, nil)
	return nil
}

func (r *Rollup) rollupUser(ctx context.Context, username, date string) error {
	outcome, err := r.aggregator.MaterializeDay(ctx, username, date)
	if err != nil {
		return err
	}

	streak, err := r.aggregator.StreakAt(ctx, username, date)
	if err != nil {
		return err
	}

	if r.recorder != nil {
		event := domain.DailyOutcomeEvent{
			Username:      username,
			Outcome:       *outcome,
			CurrentStreak: streak.CurrentStreak,
			LongestStreak: streak.LongestStreak,
		}
		if err := r.recorder.RecordDailyOutcome(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to record daily outcome",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
	}

	if !outcome.HadSession || !IsMilestone(streak.CurrentStreak) {
		return nil
	}

	first, err := r.outcomes.MarkStreakNotified(ctx, username, date)
	if err != nil {
		return fmt.Errorf("mark streak notified: %w", err)
	}
	if !first {
		return nil
	}

	alert := domain.NewAlert(username, domain.NotificationTypeStreak, StreakMessage(streak.CurrentStreak), r.clock.Now())
	_, err = r.dispatcher.Dispatch(ctx, alert)
	return err
}

func StreakMessage(days int) string {
	return fmt.Sprintf("🔥 %d-day focus streak! Keep it going!", days)
}
