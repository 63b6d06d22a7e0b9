//go:build gcloud

package eventrecorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const (
	bigQueryBatchSize     = 100
	bigQueryFlushInterval = 10 * time.Second
)

type bigQueryVerdict struct {
	ObservedAt    time.Time `bigquery:"observed_at"`
	Username      string    `bigquery:"username"`
	SessionID     string    `bigquery:"session_id"`
	Category      string    `bigquery:"category"`
	Source        string    `bigquery:"source"`
	IsDistraction bool      `bigquery:"is_distraction"`
	Confidence    float64   `bigquery:"confidence"`
	Notified      bool      `bigquery:"notified"`
}

type bigQueryDispatch struct {
	DispatchedAt time.Time `bigquery:"dispatched_at"`
	Username     string    `bigquery:"username"`
	AlertID      string    `bigquery:"alert_id"`
	Type         string    `bigquery:"type"`
	Tier         string    `bigquery:"tier"`
	Outcome      string    `bigquery:"outcome"`
}

type bigQueryOutcome struct {
	RecordedAt        time.Time `bigquery:"recorded_at"`
	Date              string    `bigquery:"date"`
	Username          string    `bigquery:"username"`
	FocusMinutes      int64     `bigquery:"focus_minutes"`
	DistractionCount  int64     `bigquery:"distraction_count"`
	ProductivityScore float64   `bigquery:"productivity_score"`
	HadSession        bool      `bigquery:"had_session"`
	CurrentStreak     int64     `bigquery:"current_streak"`
	LongestStreak     int64     `bigquery:"longest_streak"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	verdicts *bigquery.Inserter
	dispatch *bigquery.Inserter
	outcomes *bigquery.Inserter

	mu      sync.Mutex
	pending []*bigQueryVerdict

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.PipelineEventRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "pipeline event recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, pipeline event recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, pipeline event recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	dataset := client.Dataset(cfg.BigQueryDataset)
	r := &bigQueryRecorder{
		client:   client,
		verdicts: dataset.Table(cfg.BigQueryVerdictTable).Inserter(),
		dispatch: dataset.Table(cfg.BigQueryDispatchTable).Inserter(),
		outcomes: dataset.Table(cfg.BigQueryOutcomeTable).Inserter(),
		stop:     make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	slog.InfoContext(ctx, "pipeline event recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
	)

	return r, nil
}

// RecordVerdict buffers verdicts, one per observation, and inserts them in batches.
func (r *bigQueryRecorder) RecordVerdict(ctx context.Context, event domain.VerdictEvent) error {
	r.mu.Lock()
	r.pending = append(r.pending, &bigQueryVerdict{
		ObservedAt:    event.ObservedAt,
		Username:      event.Username,
		SessionID:     event.SessionID,
		Category:      event.Category,
		Source:        event.Source,
		IsDistraction: event.IsDistraction,
		Confidence:    event.Confidence,
		Notified:      event.Notified,
	})
	full := len(r.pending) >= bigQueryBatchSize
	r.mu.Unlock()

	if full {
		return r.Flush(ctx)
	}
	return nil
}

func (r *bigQueryRecorder) RecordDispatch(ctx context.Context, event domain.DispatchEvent) error {
	row := &bigQueryDispatch{
		DispatchedAt: event.At,
		Username:     event.Username,
		AlertID:      event.AlertID,
		Type:         event.Type,
		Tier:         event.Tier,
		Outcome:      event.Outcome,
	}
	if err := r.dispatch.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert dispatch event to BigQuery",
			slog.String("error", err.Error()),
			slog.String("alert_id", event.AlertID),
		)
	}
	return nil
}

func (r *bigQueryRecorder) RecordDailyOutcome(ctx context.Context, event domain.DailyOutcomeEvent) error {
	row := &bigQueryOutcome{
		RecordedAt:        time.Now(),
		Date:              event.Outcome.Date,
		Username:          event.Username,
		FocusMinutes:      int64(event.Outcome.FocusMinutes),
		DistractionCount:  int64(event.Outcome.DistractionCount),
		ProductivityScore: event.Outcome.ProductivityScore,
		HadSession:        event.Outcome.HadSession,
		CurrentStreak:     int64(event.CurrentStreak),
		LongestStreak:     int64(event.LongestStreak),
	}
	if err := r.outcomes.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert daily outcome to BigQuery",
			slog.String("error", err.Error()),
			slog.String("username", event.Username),
		)
	}
	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := r.verdicts.Put(ctx, batch); err != nil {
		slog.WarnContext(ctx, "failed to insert verdicts to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(batch)),
		)
	}
	return nil
}

func (r *bigQueryRecorder) flushLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(bigQueryFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			_ = r.Flush(context.Background())
		}
	}
}

func (r *bigQueryRecorder) Close() error {
	close(r.stop)
	r.wg.Wait()
	_ = r.Flush(context.Background())

	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
