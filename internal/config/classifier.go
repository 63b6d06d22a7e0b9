package config

import (
	"os"
	"time"
)

const (
	classifierURLEnv            = "CLASSIFIER_URL"
	classifierTimeoutMsEnv      = "CLASSIFIER_TIMEOUT_MS"
	classifierHealthIntervalEnv = "CLASSIFIER_HEALTH_INTERVAL_SECONDS"

	defaultClassifierTimeout        = 200 * time.Millisecond
	defaultClassifierHealthInterval = 15 * time.Second
)

type ClassifierConfig struct {
	// URL of the primary classification service. Empty means keyword fallback only.
	URL            string
	Timeout        time.Duration
	HealthInterval time.Duration
}

func LoadClassifierConfig() *ClassifierConfig {
	timeout := defaultClassifierTimeout
	if ms := positiveIntEnv(classifierTimeoutMsEnv, 0); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	interval := defaultClassifierHealthInterval
	if s := positiveIntEnv(classifierHealthIntervalEnv, 0); s > 0 {
		interval = time.Duration(s) * time.Second
	}

	return &ClassifierConfig{
		URL:            os.Getenv(classifierURLEnv),
		Timeout:        timeout,
		HealthInterval: interval,
	}
}
