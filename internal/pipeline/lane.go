package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
	"github.com/KasumiMercury/primind-focusguard/internal/throttle"
)

const (
	distractionMessage = "⚠️ Distracting activity detected: %s"
	escalatedMessage   = "🚨 Multiple distractions detected! Stay focused on: %s"
)

type job struct {
	ctx  context.Context
	obs  domain.Observation
	done chan jobResult
}

type jobResult struct {
	result *Result
	err    error
}

type lane struct {
	session *domain.SessionRecord
	jobs    chan *job
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	// owned by the lane goroutine until stopped is closed
	distractions int
}

func newLane(parent context.Context, session *domain.SessionRecord, buffer int) *lane {
	ctx, cancel := context.WithCancel(parent)
	return &lane{
		session: session,
		jobs:    make(chan *job, buffer),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

func (p *Pipeline) runLane(l *lane) {
	defer p.wg.Done()
	defer close(l.stopped)

	for j := range l.jobs {
		if l.ctx.Err() != nil {
			j.done <- jobResult{err: ErrSessionClosed}
			continue
		}

		if err := p.sem.Acquire(l.ctx, 1); err != nil {
			j.done <- jobResult{err: ErrSessionClosed}
			continue
		}
		res, err := p.process(l, j)
		p.sem.Release(1)

		j.done <- jobResult{result: res, err: err}
	}
}

// process runs with the request's trace but the lane's lifetime: ending the
// session cancels an in-flight classification.
func (p *Pipeline) process(l *lane, j *job) (*Result, error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(j.ctx))
	defer cancel()
	stop := context.AfterFunc(l.ctx, cancel)
	defer stop()

	ctx, span := tracing.StartObservationSpan(ctx, l.session.ID, l.session.Username)
	defer span.End()

	verdict := p.deps.Classifier.Classify(ctx, j.obs.WindowTitle, l.session.Keywords)

	if l.ctx.Err() != nil {
		tracing.RecordResult(span, ErrSessionClosed)
		return nil, ErrSessionClosed
	}

	decision, err := p.deps.Throttle.Observe(l.session.ID, verdict.IsDistraction, j.obs.ObservedAt)
	if err != nil {
		tracing.RecordResult(span, err)
		return nil, err
	}

	res := &Result{Verdict: verdict}
	if verdict.IsDistraction {
		l.distractions++
	}

	if decision.Notify {
		alert := p.buildAlert(ctx, l.session, j.obs, decision)

		// Dispatched alerts survive the session ending.
		outcome, dispatchErr := p.deps.Dispatcher.Dispatch(context.WithoutCancel(ctx), alert)
		res.Alert = alert
		res.Outcome = outcome
		res.NotificationSent = dispatchErr == nil
	}

	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordObservation(ctx, verdict.Category.String(), string(verdict.Source), verdict.IsDistraction)
	}
	p.recordVerdict(ctx, l.session, j.obs, verdict, res.NotificationSent)

	tracing.RecordResult(span, nil)
	return res, nil
}

func (p *Pipeline) buildAlert(ctx context.Context, session *domain.SessionRecord, obs domain.Observation, d throttle.Decision) *domain.Alert {
	format := distractionMessage
	if d.Tier == domain.TierEscalated {
		format = escalatedMessage
	}

	alert := domain.NewAlert(session.Username, domain.NotificationTypeDistraction, fmt.Sprintf(format, obs.WindowTitle), p.deps.Clock.Now())
	alert.SessionID = session.ID
	alert.WindowTitle = obs.WindowTitle
	alert.DistractionCount = d.Count
	alert.Tier = d.Tier

	if d.Tier == domain.TierEscalated && p.deps.Preferences != nil {
		prefs, err := p.deps.Preferences.GetPreferences(ctx, session.Username)
		if err != nil {
			slog.WarnContext(ctx, "failed to load preferences, escalating without custom audio",
				slog.String("username", session.Username),
				slog.String("error", err.Error()),
			)
		} else if prefs != nil {
			alert.CustomAudioRef = prefs.CustomAudioRef
		}
	}

	return alert
}

func (p *Pipeline) recordVerdict(ctx context.Context, session *domain.SessionRecord, obs domain.Observation, v domain.Verdict, notified bool) {
	if p.deps.Recorder == nil {
		return
	}

	event := domain.VerdictEvent{
		Username:      session.Username,
		SessionID:     session.ID,
		Category:      v.Category.String(),
		Source:        string(v.Source),
		IsDistraction: v.IsDistraction,
		Confidence:    v.Confidence,
		Notified:      notified,
		ObservedAt:    obs.ObservedAt,
	}
	if err := p.deps.Recorder.RecordVerdict(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to record verdict event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}
}
