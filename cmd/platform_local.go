//go:build !gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/config"
	"github.com/KasumiMercury/primind-focusguard/internal/infra/taskqueue"
	"github.com/KasumiMercury/primind-focusguard/internal/observability"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/logging"
	"github.com/KasumiMercury/primind-focusguard/internal/reminder"
)

// initReminderBackend uses the primind task queue when PRIMIND_TASKS_URL is
// set and in-process timers otherwise.
func initReminderBackend(_ context.Context, cfg *config.Config) (reminder.Backend, func() error, error) {
	if cfg.TaskQueue.PrimindTasksURL == "" {
		slog.Warn("PRIMIND_TASKS_URL not set, reminders use in-process timers and do not survive restarts")

		timers := reminder.NewTimerBackend(clock.SystemClock{})
		return timers, func() error {
			timers.Stop()
			return nil
		}, nil
	}

	tq := taskqueue.NewPrimindTasksClient(
		cfg.TaskQueue.PrimindTasksURL,
		cfg.TaskQueue.QueueName,
		cfg.TaskQueue.FireURL,
		cfg.TaskQueue.MaxRetries,
	)

	slog.Info("task queue initialized",
		slog.String("type", "primind_tasks"),
		slog.String("url", cfg.TaskQueue.PrimindTasksURL),
		slog.String("queue", cfg.TaskQueue.QueueName),
		slog.String("fire_url", cfg.TaskQueue.FireURL),
	)

	return reminder.NewQueueBackend(tq), nil, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "focusguard"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: logging.Module("focusguard"),
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
