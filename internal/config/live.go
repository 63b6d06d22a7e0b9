package config

import (
	"os"
	"strings"
	"time"
)

const (
	heartbeatIntervalEnv   = "HEARTBEAT_INTERVAL_SECONDS"
	heartbeatMultiplierEnv = "HEARTBEAT_TIMEOUT_MULTIPLIER"
	liveOutboundBufferEnv  = "LIVE_OUTBOUND_BUFFER"
	liveTokenSecretEnv     = "LIVE_TOKEN_SECRET"
	liveTokenTTLHoursEnv   = "LIVE_TOKEN_TTL_HOURS"
	liveAllowedOriginsEnv  = "LIVE_ALLOWED_ORIGINS"

	defaultHeartbeatIntervalSeconds = 30
	defaultHeartbeatMultiplier      = 3
	defaultLiveOutboundBuffer       = 16
	defaultLiveTokenTTLHours        = 12
)

type LiveConfig struct {
	HeartbeatInterval   time.Duration
	HeartbeatMultiplier int
	OutboundBuffer      int
	TokenSecret         string
	TokenTTL            time.Duration
	AllowedOrigins      []string
}

// HeartbeatTimeout is how long a connection may stay silent before the sweeper drops it.
func (c *LiveConfig) HeartbeatTimeout() time.Duration {
	return c.HeartbeatInterval * time.Duration(c.HeartbeatMultiplier)
}

func LoadLiveConfig() *LiveConfig {
	var origins []string
	for _, o := range strings.Split(os.Getenv(liveAllowedOriginsEnv), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	multiplier := defaultHeartbeatMultiplier
	if v := os.Getenv(heartbeatMultiplierEnv); v != "" {
		// values below 2 are kept so Validate rejects them
		multiplier = atoiOr(v, 0)
	}

	return &LiveConfig{
		HeartbeatInterval:   time.Duration(positiveIntEnv(heartbeatIntervalEnv, defaultHeartbeatIntervalSeconds)) * time.Second,
		HeartbeatMultiplier: multiplier,
		OutboundBuffer:      positiveIntEnv(liveOutboundBufferEnv, defaultLiveOutboundBuffer),
		TokenSecret:         os.Getenv(liveTokenSecretEnv),
		TokenTTL:            time.Duration(positiveIntEnv(liveTokenTTLHoursEnv, defaultLiveTokenTTLHours)) * time.Hour,
		AllowedOrigins:      origins,
	}
}

func (c *LiveConfig) Validate() error {
	if c.HeartbeatInterval <= 0 {
		return ErrInvalidHeartbeatInterval
	}
	if c.HeartbeatMultiplier < 2 {
		return ErrHeartbeatMultiplierTooLow
	}
	if c.OutboundBuffer <= 0 {
		return ErrInvalidOutboundBufferSize
	}
	return nil
}
