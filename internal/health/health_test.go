package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/grpchealth"
	"github.com/gin-gonic/gin"
)

type probe bool

func (p probe) Healthy() bool { return bool(p) }

func TestCheckClassifierDegradedStaysReady(t *testing.T) {
	c := NewChecker(nil, probe(false), "test")

	status := c.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("expected overall healthy, got %s", status.Status)
	}
	if got := status.Checks["classifier"].Status; got != StatusDegraded {
		t.Errorf("expected classifier degraded, got %s", got)
	}

	resp, err := c.CheckGRPC(context.Background(), &grpchealth.CheckRequest{})
	if err != nil {
		t.Fatalf("CheckGRPC() error = %v", err)
	}
	if resp.Status != grpchealth.StatusServing {
		t.Errorf("expected serving, got %v", resp.Status)
	}
}

func TestReadyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewChecker(nil, probe(true), "1.2.3")

	r := gin.New()
	r.GET("/health/ready", c.ReadyHandler())
	r.GET("/health/live", c.LiveHandler())

	for _, path := range []string{"/health/ready", "/health/live"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version != "1.2.3" || body.Checks["classifier"].Status != StatusHealthy {
		t.Errorf("unexpected body %+v", body)
	}
}
