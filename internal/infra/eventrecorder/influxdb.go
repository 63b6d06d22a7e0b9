//go:build !gcloud

package eventrecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	done     chan struct{}
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.PipelineEventRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "pipeline event recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, pipeline event recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPI(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	r := &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		done:     make(chan struct{}),
	}
	go r.logErrors()

	slog.InfoContext(ctx, "pipeline event recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return r, nil
}

// logErrors drains asynchronous write errors.
func (r *influxDBRecorder) logErrors() {
	errs := r.writeAPI.Errors()
	for {
		select {
		case <-r.done:
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			slog.Warn("failed to write pipeline event to InfluxDB",
				slog.String("error", err.Error()),
			)
		}
	}
}

func (r *influxDBRecorder) RecordVerdict(_ context.Context, event domain.VerdictEvent) error {
	r.writeAPI.WritePoint(verdictPoint(event))
	return nil
}

func (r *influxDBRecorder) RecordDispatch(_ context.Context, event domain.DispatchEvent) error {
	r.writeAPI.WritePoint(dispatchPoint(event))
	return nil
}

func (r *influxDBRecorder) RecordDailyOutcome(_ context.Context, event domain.DailyOutcomeEvent) error {
	r.writeAPI.WritePoint(outcomePoint(event))
	return nil
}

func (r *influxDBRecorder) Flush(_ context.Context) error {
	r.writeAPI.Flush()
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.writeAPI.Flush()
		close(r.done)
		r.client.Close()
	}
	return nil
}
