package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-focusguard/internal/classifier"
	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/config"
	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/handler"
	"github.com/KasumiMercury/primind-focusguard/internal/health"
	"github.com/KasumiMercury/primind-focusguard/internal/infra/eventrecorder"
	"github.com/KasumiMercury/primind-focusguard/internal/infra/repository"
	"github.com/KasumiMercury/primind-focusguard/internal/live"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/logging"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/middleware"
	"github.com/KasumiMercury/primind-focusguard/internal/pipeline"
	"github.com/KasumiMercury/primind-focusguard/internal/progress"
	"github.com/KasumiMercury/primind-focusguard/internal/reminder"
	"github.com/KasumiMercury/primind-focusguard/internal/throttle"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}
	obs.SetLogLevel(cfg.LogLevel)

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	if err := cfg.TaskQueue.Validate(); err != nil {
		slog.Error("task queue configuration error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	pipelineMetrics, err := metrics.NewPipelineMetrics()
	if err != nil {
		slog.Error("failed to initialize pipeline metrics", slog.String("error", err.Error()))
		return 1
	}

	liveMetrics, err := metrics.NewLiveMetrics()
	if err != nil {
		slog.Error("failed to initialize live metrics", slog.String("error", err.Error()))
		return 1
	}

	// InfluxDB for local, BigQuery for gcloud
	recorder, err := eventrecorder.NewRecorder(ctx, eventrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize pipeline event recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close pipeline event recorder", slog.String("error", err.Error()))
		}
	}()

	redisClient := redis.NewClient(cfg.Redis.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	notificationRepo := repository.NewNotificationRepository(redisClient)
	sessionRepo := repository.NewSessionRepository(redisClient)
	outcomeRepo := repository.NewOutcomeRepository(redisClient)
	preferenceRepo := repository.NewPreferenceRepository(redisClient)
	reminderRepo := repository.NewReminderRepository(redisClient)

	clk := clock.SystemClock{}

	var primary classifier.PrimaryCapability
	if cfg.Classifier.URL != "" {
		primary = classifier.NewRemoteCapability(cfg.Classifier.URL)
	} else {
		slog.Warn("CLASSIFIER_URL not set, classifying with keyword fallback only")
	}
	adapter := classifier.NewAdapter(primary, classifier.NewKeywordCapability(), classifier.Config{
		Timeout:        cfg.Classifier.Timeout,
		HealthInterval: cfg.Classifier.HealthInterval,
	}, pipelineMetrics)

	registry := live.NewRegistry(cfg.Live.HeartbeatTimeout(), liveMetrics)

	tokens := live.NewTokenIssuer(cfg.Live.TokenSecret, cfg.Live.TokenTTL, clk)
	if !tokens.Enabled() {
		slog.Warn("LIVE_TOKEN_SECRET not set, live channels are bound by username only")
	}

	liveServer := live.NewServer(registry, tokens, live.ServerConfig{
		HeartbeatTimeout: cfg.Live.HeartbeatTimeout(),
		OutboundBuffer:   cfg.Live.OutboundBuffer,
		AllowedOrigins:   cfg.Live.AllowedOrigins,
	}, clk, liveMetrics)

	dispatcher := dispatch.NewDispatcher(notificationRepo, registry, pipelineMetrics, recorder, clk)
	liveServer.SetTestNotifier(dispatcher)

	aggregator := progress.NewAggregator(sessionRepo, outcomeRepo, cfg.Progress.Location, clk)
	rollup := progress.NewRollup(aggregator, sessionRepo, outcomeRepo, dispatcher, recorder, cfg.Progress.RollupSchedule, clk)

	reminderBackend, cleanup, err := initReminderBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize reminder backend", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("reminder backend cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	scheduler := reminder.NewScheduler(reminderRepo, reminderBackend, dispatcher, pipelineMetrics, reminder.Config{
		Location: cfg.Progress.Location,
		Grace:    cfg.Reminder.Grace,
	}, clk)

	sessionPipeline := pipeline.New(pipeline.Deps{
		Classifier:  adapter,
		Throttle:    throttle.New(),
		Dispatcher:  dispatcher,
		Sessions:    sessionRepo,
		Preferences: preferenceRepo,
		Progress:    aggregator,
		Recorder:    recorder,
		Metrics:     pipelineMetrics,
		Clock:       clk,
	}, pipeline.Config{
		LaneBuffer:    cfg.Pipeline.SessionLaneBuffer,
		MaxConcurrent: int64(cfg.Pipeline.MaxConcurrentClassifications),
	})
	defer sessionPipeline.Stop()

	workers, workerCtx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		adapter.Run(workerCtx)
		return nil
	})
	workers.Go(func() error {
		registry.RunSweeper(workerCtx, cfg.Live.HeartbeatInterval)
		return nil
	})
	if err := rollup.Start(workerCtx); err != nil {
		slog.Error("failed to start day rollup", slog.String("error", err.Error()))
		return 1
	}
	defer rollup.Stop()

	var classifierProbe health.ClassifierProbe
	if primary != nil {
		classifierProbe = adapter
	}
	healthChecker := health.NewChecker(redisClient, classifierProbe, Version)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("focusguard"),
		TracerName:  "github.com/KasumiMercury/primind-focusguard/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	grpcHealthPath, grpcHealthHandler := healthChecker.GRPCHandler()
	r.Any(grpcHealthPath+"*method", gin.WrapH(grpcHealthHandler))

	handler.Register(r, r.Group("/api/v1"), handler.Handlers{
		Sessions:      handler.NewSessionHandler(sessionPipeline, tokens),
		Notifications: handler.NewNotificationHandler(notificationRepo, preferenceRepo),
		Progress:      handler.NewProgressHandler(aggregator),
		Reminders:     handler.NewReminderHandler(scheduler),
		Live:          handler.NewLiveHandler(liveServer, dispatcher),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Bool("primary_classifier", primary != nil),
			slog.Duration("heartbeat_interval", cfg.Live.HeartbeatInterval),
			slog.Duration("heartbeat_timeout", cfg.Live.HeartbeatTimeout()),
			slog.String("rollup_schedule", cfg.Progress.RollupSchedule),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Hijacked websocket connections are not tracked by Shutdown.
		registry.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			exitCode = 1
		}

	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exited with error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	cancel()
	if err := workers.Wait(); err != nil {
		slog.Warn("background worker error", slog.String("error", err.Error()))
	}

	if err := recorder.Flush(context.Background()); err != nil {
		slog.Warn("failed to flush pipeline events", slog.String("error", err.Error()))
	}

	slog.Info("server exited properly")
	return exitCode
}
