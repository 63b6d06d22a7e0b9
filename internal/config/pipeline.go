package config

const (
	sessionLaneBufferEnv     = "SESSION_LANE_BUFFER"
	maxConcurrentClassifyEnv = "MAX_CONCURRENT_CLASSIFICATIONS"

	defaultSessionLaneBuffer            = 32
	defaultMaxConcurrentClassifications = 64
)

type PipelineConfig struct {
	SessionLaneBuffer            int
	MaxConcurrentClassifications int
}

func LoadPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		SessionLaneBuffer:            positiveIntEnv(sessionLaneBufferEnv, defaultSessionLaneBuffer),
		MaxConcurrentClassifications: positiveIntEnv(maxConcurrentClassifyEnv, defaultMaxConcurrentClassifications),
	}
}
