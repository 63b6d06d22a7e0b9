package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type countingTester struct {
	registry *Registry
	calls    atomic.Int32
}

func (c *countingTester) SendTestNotification(ctx context.Context, username string) error {
	c.calls.Add(1)
	alert := domain.NewAlert(username, domain.NotificationTypeTest, "test notification", time.Now())
	return c.registry.Deliver(ctx, alert)
}

func newTestServer(t *testing.T, cfg ServerConfig) (*httptest.Server, *Registry, *countingTester) {
	t.Helper()

	registry := NewRegistry(time.Minute, nil)
	srv := NewServer(registry, nil, cfg, nil, nil)
	tester := &countingTester{registry: registry}
	srv.SetTestNotifier(tester)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Serve(w, r, strings.TrimPrefix(r.URL.Path, "/ws/"))
	}))
	t.Cleanup(func() {
		registry.CloseAll()
		ts.Close()
	})

	return ts, registry, tester
}

func dial(t *testing.T, ts *httptest.Server, username, origin string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + username
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func receive(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := websocket.JSON.Receive(ws, &msg); err != nil {
		t.Fatalf("receive: %v", err)
	}
	return msg
}

func TestServerHeartbeatAndPush(t *testing.T) {
	ts, registry, _ := newTestServer(t, ServerConfig{HeartbeatTimeout: 5 * time.Second, OutboundBuffer: 8})
	ws := dial(t, ts, "alice", "http://localhost")

	if err := websocket.JSON.Send(ws, Message{Type: MessageHeartbeat, Timestamp: time.Now()}); err != nil {
		t.Fatalf("send heartbeat: %v", err)
	}
	if msg := receive(t, ws); msg.Type != MessageHeartbeatResponse {
		t.Fatalf("expected heartbeat_response, got %q", msg.Type)
	}

	alert := domain.NewAlert("alice", domain.NotificationTypeDistraction, "stay focused", time.Now())
	if err := registry.Deliver(context.Background(), alert); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	msg := receive(t, ws)
	if msg.Type != MessageNotification {
		t.Fatalf("expected notification, got %q", msg.Type)
	}
	payload, err := msg.Notification()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Message != "stay focused" {
		t.Errorf("unexpected message %q", payload.Message)
	}
}

func TestServerTestNotification(t *testing.T) {
	ts, _, tester := newTestServer(t, ServerConfig{HeartbeatTimeout: 5 * time.Second, OutboundBuffer: 8})
	ws := dial(t, ts, "bob", "http://localhost")

	if err := websocket.JSON.Send(ws, Message{Type: MessageTestNotification, Timestamp: time.Now()}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msg := receive(t, ws)
	if msg.Type != MessageNotification {
		t.Fatalf("expected notification, got %q", msg.Type)
	}
	if tester.calls.Load() != 1 {
		t.Errorf("expected 1 test notification, got %d", tester.calls.Load())
	}
}

func TestServerSupersedesOlderConnection(t *testing.T) {
	ts, registry, _ := newTestServer(t, ServerConfig{HeartbeatTimeout: 5 * time.Second, OutboundBuffer: 8})

	first := dial(t, ts, "carol", "http://localhost")
	if err := websocket.JSON.Send(first, Message{Type: MessageHeartbeat}); err != nil {
		t.Fatalf("send: %v", err)
	}
	receive(t, first)

	second := dial(t, ts, "carol", "http://localhost")
	if msg := receive(t, first); msg.Type != MessageSuperseded {
		t.Fatalf("expected superseded, got %q", msg.Type)
	}

	if err := websocket.JSON.Send(second, Message{Type: MessageHeartbeat}); err != nil {
		t.Fatalf("send: %v", err)
	}
	receive(t, second)

	if registry.Len() != 1 {
		t.Errorf("expected exactly one registered connection, got %d", registry.Len())
	}
}

func TestServerRejectsForeignOrigin(t *testing.T) {
	ts, _, _ := newTestServer(t, ServerConfig{
		HeartbeatTimeout: 5 * time.Second,
		AllowedOrigins:   []string{"http://allowed.example"},
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/dave"
	if _, err := websocket.Dial(url, "", "http://evil.example"); err == nil {
		t.Fatal("expected handshake to fail for a foreign origin")
	}
}
