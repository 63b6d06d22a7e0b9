// Package reminder arms one-shot reminders and fires them as alerts.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
)

const localTimeLayout = "15:04"

type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *domain.Alert) (dispatch.Outcome, error)
}

// FireTime resolves a reminder's date and HH:MM in loc. With no date it is
// the next occurrence of HH:MM strictly after now.
func FireTime(date, localTime string, loc *time.Location, now time.Time) (time.Time, error) {
	hm, err := time.Parse(localTimeLayout, localTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidLocalTime, localTime)
	}

	if date == "" {
		local := now.In(loc)
		at := time.Date(local.Year(), local.Month(), local.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
		if !at.After(now) {
			at = time.Date(local.Year(), local.Month(), local.Day()+1, hm.Hour(), hm.Minute(), 0, 0, loc)
		}
		return at, nil
	}

	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func Message(text string) string {
	return "⏰ Reminder: " + text
}

type Scheduler struct {
	repo       domain.ReminderRepository
	backend    Backend
	dispatcher AlertDispatcher
	metrics    *metrics.PipelineMetrics
	clock      clock.Clock
	loc        *time.Location
	grace      time.Duration
}

type Config struct {
	Location *time.Location
	Grace    time.Duration
}

func NewScheduler(
	repo domain.ReminderRepository,
	backend Backend,
	dispatcher AlertDispatcher,
	pipelineMetrics *metrics.PipelineMetrics,
	cfg Config,
	clk clock.Clock,
) *Scheduler {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &Scheduler{
		repo:       repo,
		backend:    backend,
		dispatcher: dispatcher,
		metrics:    pipelineMetrics,
		clock:      clk,
		loc:        cfg.Location,
		grace:      cfg.Grace,
	}

	if b, ok := backend.(binder); ok {
		b.Bind(s.fireJob)
	}

	return s
}

// Arm computes the fire time and replaces any pending job for the reminder.
// A fire time already in the past is reported as skipped, never backfilled.
func (s *Scheduler) Arm(ctx context.Context, r *domain.Reminder) (domain.ReminderOutcome, error) {
	now := s.clock.Now()

	fireAt, err := FireTime(r.Date, r.LocalTime, s.loc, now)
	if err != nil {
		return "", err
	}

	if !fireAt.After(now) {
		slog.InfoContext(ctx, "reminder time already passed",
			slog.String("event", "reminder.skipped"),
			slog.String("key", r.Key()),
			slog.Time("fire_at", fireAt),
		)
		s.recordOutcome(ctx, domain.ReminderSkipped)
		return domain.ReminderSkipped, nil
	}

	existing, err := s.repo.GetReminder(ctx, r.Key())
	switch {
	case err == nil:
		if cancelErr := s.backend.Cancel(ctx, jobFor(existing)); cancelErr != nil {
			slog.WarnContext(ctx, "failed to cancel previous reminder job",
				slog.String("key", r.Key()),
				slog.String("error", cancelErr.Error()),
			)
		}
	case !errors.Is(err, domain.ErrReminderNotFound):
		return "", fmt.Errorf("get reminder: %w", err)
	}

	r.FireAt = fireAt
	r.ArmedAt = now
	if err := s.repo.SaveReminder(ctx, r); err != nil {
		return "", fmt.Errorf("save reminder: %w", err)
	}

	if err := s.backend.Schedule(ctx, jobFor(r)); err != nil {
		return "", fmt.Errorf("schedule reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder armed",
		slog.String("event", "reminder.armed"),
		slog.String("key", r.Key()),
		slog.Time("fire_at", fireAt),
	)
	s.recordOutcome(ctx, domain.ReminderArmed)
	return domain.ReminderArmed, nil
}

func (s *Scheduler) Cancel(ctx context.Context, username, id string) error {
	key := (&domain.Reminder{Username: username, ID: id}).Key()

	r, err := s.repo.GetReminder(ctx, key)
	if err != nil {
		return err
	}

	if err := s.backend.Cancel(ctx, jobFor(r)); err != nil {
		return fmt.Errorf("cancel reminder job: %w", err)
	}
	if err := s.repo.DeleteReminder(ctx, key); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}

	s.recordOutcome(ctx, domain.ReminderCancelled)
	return nil
}

// Fire dispatches the reminder armed for key at scheduledAt, once. Fires for
// a replaced arming, duplicates, and fires later than the grace window are
// skipped.
func (s *Scheduler) Fire(ctx context.Context, key string, scheduledAt time.Time) (domain.ReminderOutcome, error) {
	ctx, span := tracing.StartReminderFireSpan(ctx, key, scheduledAt)
	defer span.End()

	r, err := s.repo.GetReminder(ctx, key)
	if err != nil {
		tracing.RecordResult(span, err)
		return "", err
	}

	if !r.FireAt.Equal(scheduledAt) {
		slog.DebugContext(ctx, "ignoring fire for replaced reminder",
			slog.String("key", key),
			slog.Time("scheduled_at", scheduledAt),
			slog.Time("armed_for", r.FireAt),
		)
		tracing.RecordResult(span, nil)
		return domain.ReminderSkipped, nil
	}

	now := s.clock.Now()
	if late := now.Sub(scheduledAt); late > s.grace {
		slog.WarnContext(ctx, "reminder fired too late, skipping",
			slog.String("event", "reminder.skipped"),
			slog.String("key", key),
			slog.Duration("late", late),
		)
		s.forget(ctx, key)
		s.recordOutcome(ctx, domain.ReminderSkipped)
		tracing.RecordResult(span, nil)
		return domain.ReminderSkipped, nil
	}

	first, err := s.repo.MarkFired(ctx, key, scheduledAt)
	if err != nil {
		err = fmt.Errorf("mark fired: %w", err)
		tracing.RecordResult(span, err)
		return "", err
	}
	if !first {
		slog.DebugContext(ctx, "duplicate reminder fire", slog.String("key", key))
		tracing.RecordResult(span, nil)
		return domain.ReminderSkipped, nil
	}

	alert := domain.NewAlert(r.Username, domain.NotificationTypeReminder, Message(r.Text), now)
	if _, err := s.dispatcher.Dispatch(ctx, alert); err != nil {
		tracing.RecordResult(span, err)
		return "", err
	}

	s.forget(ctx, key)
	s.recordOutcome(ctx, domain.ReminderFired)
	tracing.RecordResult(span, nil)
	return domain.ReminderFired, nil
}

func (s *Scheduler) fireJob(ctx context.Context, job Job) {
	if _, err := s.Fire(ctx, job.Key, job.FireAt); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		slog.ErrorContext(ctx, "reminder fire failed",
			slog.String("key", job.Key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Scheduler) forget(ctx context.Context, key string) {
	if err := s.repo.DeleteReminder(ctx, key); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		slog.WarnContext(ctx, "failed to delete reminder",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Scheduler) recordOutcome(ctx context.Context, outcome domain.ReminderOutcome) {
	if s.metrics != nil {
		s.metrics.RecordReminder(ctx, string(outcome))
	}
}

func jobFor(r *domain.Reminder) Job {
	return Job{Key: r.Key(), Username: r.Username, FireAt: r.FireAt}
}
