package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level: got %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.Classifier.Timeout != 200*time.Millisecond {
		t.Errorf("classifier timeout: got %v, want 200ms", cfg.Classifier.Timeout)
	}
	if cfg.Live.HeartbeatInterval != 30*time.Second {
		t.Errorf("heartbeat interval: got %v, want 30s", cfg.Live.HeartbeatInterval)
	}
	if cfg.Live.HeartbeatTimeout() != 90*time.Second {
		t.Errorf("heartbeat timeout: got %v, want 90s", cfg.Live.HeartbeatTimeout())
	}
	if cfg.Progress.Location != time.UTC {
		t.Errorf("location: got %v, want UTC", cfg.Progress.Location)
	}
	if cfg.Progress.RollupSchedule != defaultRollupSchedule {
		t.Errorf("rollup schedule: got %q, want %q", cfg.Progress.RollupSchedule, defaultRollupSchedule)
	}
	if err := ValidateForRun(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("CLASSIFIER_URL", "http://classifier:9000")
	t.Setenv("CLASSIFIER_TIMEOUT_MS", "150")
	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "10")
	t.Setenv("HEARTBEAT_TIMEOUT_MULTIPLIER", "4")
	t.Setenv("LIVE_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("REMINDER_GRACE_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Classifier.URL != "http://classifier:9000" {
		t.Errorf("classifier url: got %q", cfg.Classifier.URL)
	}
	if cfg.Classifier.Timeout != 150*time.Millisecond {
		t.Errorf("classifier timeout: got %v", cfg.Classifier.Timeout)
	}
	if cfg.Live.HeartbeatTimeout() != 40*time.Second {
		t.Errorf("heartbeat timeout: got %v, want 40s", cfg.Live.HeartbeatTimeout())
	}
	if len(cfg.Live.AllowedOrigins) != 2 || cfg.Live.AllowedOrigins[1] != "https://app.example.com" {
		t.Errorf("allowed origins: got %v", cfg.Live.AllowedOrigins)
	}
	if cfg.Reminder.Grace != 30*time.Second {
		t.Errorf("grace: got %v", cfg.Reminder.Grace)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level: got %v", cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "invalid redis db",
			env:     map[string]string{"REDIS_DB": "abc", "TIMEZONE": "UTC"},
			wantErr: ErrInvalidRedisDB,
		},
		{
			name:    "invalid timezone",
			env:     map[string]string{"TIMEZONE": "Mars/Olympus"},
			wantErr: ErrInvalidTimezone,
		},
		{
			name:    "redis db out of range",
			env:     map[string]string{"REDIS_DB": "16", "TIMEZONE": "UTC"},
			wantErr: ErrInvalidRedisDB,
		},
		{
			name:    "invalid redis tls flag",
			env:     map[string]string{"REDIS_TLS": "maybe", "TIMEZONE": "UTC"},
			wantErr: ErrInvalidRedisTLS,
		},
		{
			name:    "invalid rollup schedule",
			env:     map[string]string{"TIMEZONE": "UTC", "ROLLUP_SCHEDULE": "every day"},
			wantErr: ErrInvalidRollupSchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsLowHeartbeatMultiplier(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("HEARTBEAT_TIMEOUT_MULTIPLIER", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateForRun(cfg); !errors.Is(err, ErrHeartbeatMultiplierTooLow) {
		t.Errorf("got %v, want %v", err, ErrHeartbeatMultiplierTooLow)
	}
}

func TestRedisConfig(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := cfg.Redis.Options()
	if opts.Addr != "redis.internal:6380" || opts.DB != 3 {
		t.Errorf("unexpected options: addr=%q db=%d", opts.Addr, opts.DB)
	}
	if opts.TLSConfig == nil {
		t.Error("expected TLS config when REDIS_TLS=true")
	}
}

func TestValidateRejectsRedisAddrWithoutPort(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REDIS_ADDR", "redis.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateForRun(cfg); !errors.Is(err, ErrInvalidRedisAddr) {
		t.Errorf("got %v, want %v", err, ErrInvalidRedisAddr)
	}
}

func TestValidateCallbackURL(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		requireHTTPS bool
		wantErr      bool
	}{
		{name: "http allowed locally", raw: "http://localhost:8080/api/v1/reminders/fire"},
		{name: "https", raw: "https://focus.example.com/api/v1/reminders/fire", requireHTTPS: true},
		{name: "http rejected when https required", raw: "http://focus.example.com/fire", requireHTTPS: true, wantErr: true},
		{name: "relative", raw: "/api/v1/reminders/fire", wantErr: true},
		{name: "other scheme", raw: "ftp://focus.example.com/fire", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCallbackURL("REMINDER_FIRE_URL", tt.raw, tt.requireHTTPS)
			if tt.wantErr != (err != nil) {
				t.Fatalf("got error %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCallbackURL) {
				t.Errorf("got %v, want %v", err, ErrInvalidCallbackURL)
			}
		})
	}
}
