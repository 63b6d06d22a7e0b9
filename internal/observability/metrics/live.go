package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const liveMeterName = "focusguard.live"

type LiveMetrics struct {
	connections  metric.Int64UpDownCounter
	disconnects  metric.Int64Counter
	supersedes   metric.Int64Counter
	pushedFrames metric.Int64Counter
}

func NewLiveMetrics() (*LiveMetrics, error) {
	meter := otel.Meter(liveMeterName)

	connections, err := meter.Int64UpDownCounter(
		"focusguard_live_connections",
		metric.WithDescription("Number of registered live connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	disconnects, err := meter.Int64Counter(
		"focusguard_live_disconnects_total",
		metric.WithDescription("Live connections closed, by reason"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	supersedes, err := meter.Int64Counter(
		"focusguard_live_supersedes_total",
		metric.WithDescription("Connections replaced by a newer connection for the same user"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	pushedFrames, err := meter.Int64Counter(
		"focusguard_live_frames_total",
		metric.WithDescription("Frames written to live connections, by type"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, err
	}

	return &LiveMetrics{
		connections:  connections,
		disconnects:  disconnects,
		supersedes:   supersedes,
		pushedFrames: pushedFrames,
	}, nil
}

func (m *LiveMetrics) ConnectionOpened(ctx context.Context) {
	m.connections.Add(ctx, 1)
}

func (m *LiveMetrics) ConnectionClosed(ctx context.Context, reason string) {
	m.connections.Add(ctx, -1)
	m.disconnects.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *LiveMetrics) RecordSupersede(ctx context.Context) {
	m.supersedes.Add(ctx, 1)
}

func (m *LiveMetrics) RecordFrame(ctx context.Context, frameType string) {
	m.pushedFrames.Add(ctx, 1, metric.WithAttributes(attribute.String("type", frameType)))
}
