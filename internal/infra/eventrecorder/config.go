package eventrecorder

import (
	"os"
)

type Config struct {
	Disabled bool

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	BigQueryProjectID     string
	BigQueryDataset       string
	BigQueryVerdictTable  string
	BigQueryDispatchTable string
	BigQueryOutcomeTable  string
}

func LoadConfig() *Config {
	cfg := &Config{
		Disabled: os.Getenv("PIPELINE_EVENTS_DISABLED") == "true",

		InfluxDBURL:    getEnvOrDefault("INFLUXDB_URL", "http://localhost:8086"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getEnvOrDefault("INFLUXDB_BUCKET", "focusguard_events"),

		BigQueryProjectID:     getEnvOrDefault("BIGQUERY_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		BigQueryDataset:       getEnvOrDefault("BIGQUERY_DATASET", "focusguard"),
		BigQueryVerdictTable:  getEnvOrDefault("BIGQUERY_VERDICT_TABLE", "verdicts"),
		BigQueryDispatchTable: getEnvOrDefault("BIGQUERY_DISPATCH_TABLE", "dispatches"),
		BigQueryOutcomeTable:  getEnvOrDefault("BIGQUERY_OUTCOME_TABLE", "daily_outcomes"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
