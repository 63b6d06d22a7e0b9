package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pipelineTracerName = "github.com/KasumiMercury/primind-focusguard/internal/pipeline"

func PipelineTracer() trace.Tracer {
	return otel.Tracer(pipelineTracerName)
}

func StartObservationSpan(ctx context.Context, sessionID, username string) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "pipeline.observation",
		trace.WithAttributes(
			attribute.String("session_id", sessionID),
			attribute.String("username", username),
		),
	)
}

func StartClassifySpan(ctx context.Context, source string) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "classifier.classify",
		trace.WithAttributes(
			attribute.String("classifier.source", source),
		),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "classifier.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartDispatchSpan(ctx context.Context, alertID, notificationType, tier string) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "dispatch.alert",
		trace.WithAttributes(
			attribute.String("alert.id", alertID),
			attribute.String("alert.type", notificationType),
			attribute.String("alert.tier", tier),
		),
	)
}

func StartReminderFireSpan(ctx context.Context, key string, scheduledAt time.Time) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "reminder.fire",
		trace.WithAttributes(
			attribute.String("reminder.key", key),
			attribute.String("reminder.scheduled_at", scheduledAt.Format(time.RFC3339)),
		),
	)
}

func StartRollupSpan(ctx context.Context, date string) (context.Context, trace.Span) {
	return PipelineTracer().Start(ctx, "progress.rollup",
		trace.WithAttributes(
			attribute.String("rollup.date", date),
		),
	)
}

func RecordClassifyResult(span trace.Span, category string, isDistraction bool, confidence float64, err error) {
	span.SetAttributes(
		attribute.String("verdict.category", category),
		attribute.Bool("verdict.is_distraction", isDistraction),
		attribute.Float64("verdict.confidence", confidence),
	)
	RecordResult(span, err)
}

func RecordDispatchResult(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("dispatch.outcome", outcome))
	RecordResult(span, err)
}

func RecordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
