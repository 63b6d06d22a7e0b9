package eventrecorder

import (
	"context"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.PipelineEventRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordVerdict(_ context.Context, _ domain.VerdictEvent) error {
	return nil
}

func (n *noopRecorder) RecordDispatch(_ context.Context, _ domain.DispatchEvent) error {
	return nil
}

func (n *noopRecorder) RecordDailyOutcome(_ context.Context, _ domain.DailyOutcomeEvent) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
