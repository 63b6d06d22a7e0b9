package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const pipelineMeterName = "focusguard.pipeline"

type PipelineMetrics struct {
	observations          metric.Int64Counter
	classificationLatency metric.Float64Histogram
	classifierFallbacks   metric.Int64Counter
	alerts                metric.Int64Counter
	reminders             metric.Int64Counter
	activeSessions        metric.Int64UpDownCounter
}

func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter(pipelineMeterName)

	observations, err := meter.Int64Counter(
		"focusguard_observations_total",
		metric.WithDescription("Total number of classified observations"),
		metric.WithUnit("{observation}"),
	)
	if err != nil {
		return nil, err
	}

	classificationLatency, err := meter.Float64Histogram(
		"focusguard_classification_duration_seconds",
		metric.WithDescription("Time spent classifying a window title"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5,
		),
	)
	if err != nil {
		return nil, err
	}

	classifierFallbacks, err := meter.Int64Counter(
		"focusguard_classifier_fallbacks_total",
		metric.WithDescription("Total number of classifications served by the keyword fallback"),
		metric.WithUnit("{classification}"),
	)
	if err != nil {
		return nil, err
	}

	alerts, err := meter.Int64Counter(
		"focusguard_alerts_total",
		metric.WithDescription("Total number of dispatched alerts"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	reminders, err := meter.Int64Counter(
		"focusguard_reminders_total",
		metric.WithDescription("Reminder arm and fire outcomes"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	activeSessions, err := meter.Int64UpDownCounter(
		"focusguard_active_sessions",
		metric.WithDescription("Number of focus sessions currently running"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		observations:          observations,
		classificationLatency: classificationLatency,
		classifierFallbacks:   classifierFallbacks,
		alerts:                alerts,
		reminders:             reminders,
		activeSessions:        activeSessions,
	}, nil
}

func (m *PipelineMetrics) RecordObservation(ctx context.Context, category, source string, distracting bool) {
	m.observations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("source", source),
		attribute.Bool("distracting", distracting),
	))
}

func (m *PipelineMetrics) RecordClassificationDuration(ctx context.Context, source string, d time.Duration) {
	m.classificationLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("source", source),
	))
}

func (m *PipelineMetrics) RecordClassifierFallback(ctx context.Context, reason string) {
	m.classifierFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *PipelineMetrics) RecordAlert(ctx context.Context, notificationType, tier, outcome string) {
	m.alerts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", notificationType),
		attribute.String("tier", tier),
		attribute.String("outcome", outcome),
	))
}

func (m *PipelineMetrics) RecordReminder(ctx context.Context, outcome string) {
	m.reminders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *PipelineMetrics) SessionStarted(ctx context.Context) {
	m.activeSessions.Add(ctx, 1)
}

func (m *PipelineMetrics) SessionEnded(ctx context.Context) {
	m.activeSessions.Add(ctx, -1)
}
