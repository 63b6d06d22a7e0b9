package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port       string
	LogLevel   slog.Level
	TaskQueue  TaskQueueConfig
	Redis      *RedisConfig
	Classifier *ClassifierConfig
	Live       *LiveConfig
	Pipeline   *PipelineConfig
	Progress   *ProgressConfig
	Reminder   *ReminderConfig
}

// TaskQueueConfig selects the durable timer backend for reminders.
// When no queue is configured reminders fire from in-process timers.
type TaskQueueConfig struct {
	PrimindTasksURL string
	QueueName       string
	// FireURL is the reminder callback the local task queue posts to.
	FireURL string

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string
	GCloudTargetURL  string

	MaxRetries int
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	queueName := os.Getenv("TASK_QUEUE_NAME")
	if queueName == "" {
		queueName = "reminders"
	}

	maxRetries := 3
	if v := os.Getenv("TASK_QUEUE_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	fireURL := os.Getenv("REMINDER_FIRE_URL")
	if fireURL == "" {
		fireURL = "http://localhost:" + port + "/api/v1/reminders/fire"
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	progressConfig, err := LoadProgressConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		LogLevel: parseLogLevel(os.Getenv("LOG_LEVEL")),
		TaskQueue: TaskQueueConfig{
			PrimindTasksURL: os.Getenv("PRIMIND_TASKS_URL"),
			QueueName:       queueName,
			FireURL:         fireURL,

			GCloudProjectID:  os.Getenv("GCLOUD_PROJECT_ID"),
			GCloudLocationID: os.Getenv("GCLOUD_LOCATION_ID"),
			GCloudQueueID:    os.Getenv("GCLOUD_QUEUE_ID"),
			GCloudTargetURL:  os.Getenv("GCLOUD_TARGET_URL"),

			MaxRetries: maxRetries,
		},
		Redis:      redisConfig,
		Classifier: LoadClassifierConfig(),
		Live:       LoadLiveConfig(),
		Pipeline:   LoadPipelineConfig(),
		Progress:   progressConfig,
		Reminder:   LoadReminderConfig(),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func positiveIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
