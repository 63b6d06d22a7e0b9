package config

import "errors"

var (
	ErrRedisAddrMissing           = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB             = errors.New("REDIS_DB must be an integer between 0 and 15")
	ErrInvalidRedisAddr           = errors.New("REDIS_ADDR must be host:port")
	ErrInvalidRedisTLS            = errors.New("REDIS_TLS must be a boolean")
	ErrInvalidCallbackURL         = errors.New("reminder callback URL must be an absolute http(s) URL")
	ErrInvalidTimezone            = errors.New("TIMEZONE must be a valid IANA location")
	ErrHeartbeatMultiplierTooLow  = errors.New("HEARTBEAT_TIMEOUT_MULTIPLIER must be at least 2")
	ErrInvalidClassifierTimeout   = errors.New("CLASSIFIER_TIMEOUT_MS must be positive")
	ErrInvalidRollupSchedule      = errors.New("ROLLUP_SCHEDULE must not be empty")
	ErrInvalidConcurrencyLimit    = errors.New("MAX_CONCURRENT_CLASSIFICATIONS must be positive")
	ErrInvalidOutboundBufferSize  = errors.New("LIVE_OUTBOUND_BUFFER must be positive")
	ErrInvalidHeartbeatInterval   = errors.New("HEARTBEAT_INTERVAL_SECONDS must be positive")
	ErrInvalidReminderGraceWindow = errors.New("REMINDER_GRACE_SECONDS must be positive")
)
