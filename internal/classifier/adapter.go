package classifier

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
)

const (
	fallbackReasonUnhealthy = "unhealthy"
	fallbackReasonError     = "error"
	fallbackReasonTimeout   = "timeout"
	fallbackReasonNoPrimary = "no_primary"
)

type Config struct {
	Timeout        time.Duration
	HealthInterval time.Duration
}

// Adapter selects between the primary capability and the keyword fallback by a
// health flag kept current by a background probe. Classify never fails.
type Adapter struct {
	primary  PrimaryCapability
	fallback Capability
	cfg      Config
	healthy  atomic.Bool
	metrics  *metrics.PipelineMetrics
}

// NewAdapter builds an adapter. primary may be nil, in which case every
// observation is classified by the fallback.
func NewAdapter(primary PrimaryCapability, fallback Capability, cfg Config, m *metrics.PipelineMetrics) *Adapter {
	if fallback == nil {
		fallback = NewKeywordCapability()
	}

	a := &Adapter{
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		metrics:  m,
	}
	a.healthy.Store(primary != nil)

	return a
}

func (a *Adapter) Healthy() bool {
	return a.primary != nil && a.healthy.Load()
}

// Run probes the primary until ctx is done.
func (a *Adapter) Run(ctx context.Context) {
	if a.primary == nil || a.cfg.HealthInterval <= 0 {
		return
	}

	a.probe(ctx)

	ticker := time.NewTicker(a.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.probe(ctx)
		}
	}
}

func (a *Adapter) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, a.cfg.HealthInterval)
	defer cancel()

	err := a.primary.Probe(probeCtx)
	was := a.healthy.Swap(err == nil)

	switch {
	case err != nil && was:
		slog.WarnContext(ctx, "primary classifier marked unhealthy",
			slog.String("event", "classifier.primary.unhealthy"),
			slog.String("error", err.Error()),
		)
	case err == nil && !was:
		slog.InfoContext(ctx, "primary classifier healthy again",
			slog.String("event", "classifier.primary.healthy"),
		)
	}
}

// Classify returns a normalized verdict for title. It falls back to the
// keyword capability when the primary is unhealthy, slow or failing.
func (a *Adapter) Classify(ctx context.Context, title string, keywords []string) domain.Verdict {
	req := Request{Title: title, Keywords: keywords}

	if a.primary == nil {
		return a.classifyFallback(ctx, req, fallbackReasonNoPrimary)
	}
	if !a.healthy.Load() {
		return a.classifyFallback(ctx, req, fallbackReasonUnhealthy)
	}

	start := time.Now()
	spanCtx, span := tracing.StartClassifySpan(ctx, string(domain.VerdictSourcePrimary))
	callCtx, cancel := context.WithTimeout(spanCtx, a.cfg.Timeout)
	verdict, err := a.primary.Classify(callCtx, req)
	cancel()

	if err != nil {
		tracing.RecordClassifyResult(span, "", false, 0, err)
		span.End()

		reason := fallbackReasonError
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			reason = fallbackReasonTimeout
		}
		if a.healthy.CompareAndSwap(true, false) {
			slog.WarnContext(ctx, "primary classifier failed, using fallback until next healthy probe",
				slog.String("event", "classifier.primary.fail"),
				slog.String("reason", reason),
				slog.String("error", err.Error()),
			)
		}
		return a.classifyFallback(ctx, req, reason)
	}

	verdict.Source = domain.VerdictSourcePrimary
	verdict = verdict.Normalize()
	tracing.RecordClassifyResult(span, verdict.Category.String(), verdict.IsDistraction, verdict.Confidence, nil)
	span.End()

	if a.metrics != nil {
		a.metrics.RecordClassificationDuration(ctx, string(domain.VerdictSourcePrimary), time.Since(start))
	}

	return verdict
}

func (a *Adapter) classifyFallback(ctx context.Context, req Request, reason string) domain.Verdict {
	start := time.Now()

	verdict, err := a.fallback.Classify(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "fallback classifier failed",
			slog.String("error", err.Error()),
		)
		verdict = domain.Verdict{
			Category:   domain.CategoryNeutral,
			Confidence: neutralConfidence,
			Reasoning:  fallbackReasonPrefix + "unavailable",
		}
	}
	verdict.Source = domain.VerdictSourceFallback

	if a.metrics != nil {
		a.metrics.RecordClassifierFallback(ctx, reason)
		a.metrics.RecordClassificationDuration(ctx, string(domain.VerdictSourceFallback), time.Since(start))
	}

	return verdict.Normalize()
}
