package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestHandlerAddsServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Config{
		Service:     ServiceInfo{Name: "focusguard", Version: "test"},
		Environment: EnvDev,
		Module:      Module("pipeline"),
		Level:       slog.LevelDebug,
	}))

	ctx := WithRequestID(context.Background(), "req-12345678")
	logger.InfoContext(ctx, "observation classified", slog.String("category", "work"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}

	if entry["message"] != "observation classified" {
		t.Errorf("message: got %v", entry["message"])
	}
	if entry["severity"] != "INFO" {
		t.Errorf("severity: got %v", entry["severity"])
	}
	if entry["request_id"] != "req-12345678" {
		t.Errorf("request_id: got %v", entry["request_id"])
	}
	if entry["module"] != "pipeline" {
		t.Errorf("module: got %v", entry["module"])
	}
	service, ok := entry["service"].(map[string]any)
	if !ok || service["name"] != "focusguard" {
		t.Errorf("service: got %v", entry["service"])
	}
}

func TestValidateAndExtractRequestID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{name: "valid id kept", in: "abc-123_XYZ.9", keep: true},
		{name: "empty replaced", in: "", keep: false},
		{name: "injection replaced", in: "abc\ndef ghi jkl", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndExtractRequestID(tt.in)
			if tt.keep && got != tt.in {
				t.Errorf("got %q, want %q", got, tt.in)
			}
			if !tt.keep && (got == tt.in || got == "") {
				t.Errorf("expected a generated id, got %q", got)
			}
		})
	}
}
