package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/websocket"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
)

const defaultWriteTimeout = 10 * time.Second

// TestNotifier sends a test alert when a client asks for one over the channel.
type TestNotifier interface {
	SendTestNotification(ctx context.Context, username string) error
}

type ServerConfig struct {
	HeartbeatTimeout time.Duration
	OutboundBuffer   int
	WriteTimeout     time.Duration
	AllowedOrigins   []string
}

// Server upgrades HTTP requests to live channels and runs their read loops.
type Server struct {
	registry *Registry
	tokens   *TokenIssuer
	cfg      ServerConfig
	clock    clock.Clock
	tester   TestNotifier
	metrics  *metrics.LiveMetrics
}

func NewServer(registry *Registry, tokens *TokenIssuer, cfg ServerConfig, clk clock.Clock, m *metrics.LiveMetrics) *Server {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	return &Server{
		registry: registry,
		tokens:   tokens,
		cfg:      cfg,
		clock:    clk,
		metrics:  m,
	}
}

func (s *Server) SetTestNotifier(t TestNotifier) {
	s.tester = t
}

// Authorize validates the session token presented for username.
func (s *Server) Authorize(username, token string) error {
	if s.tokens == nil {
		return nil
	}
	_, err := s.tokens.Verify(username, token)
	return err
}

// Serve upgrades the request and blocks until the channel closes.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, username string) {
	release := s.registry.BeginConnect(username)
	defer release()

	ctx := context.WithoutCancel(r.Context())

	ws := websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			s.handle(ctx, conn, username, release)
		},
	}
	ws.ServeHTTP(w, r)
}

func (s *Server) checkOrigin(_ *websocket.Config, r *http.Request) error {
	if len(s.cfg.AllowedOrigins) == 0 {
		return nil
	}
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, origin) {
		return nil
	}
	return ErrOriginForbidden
}

func (s *Server) handle(ctx context.Context, ws *websocket.Conn, username string, connected func()) {
	c := NewConn(username, &wsWriter{ws: ws, timeout: s.cfg.WriteTimeout}, s.cfg.OutboundBuffer, s.clock.Now())
	s.registry.Register(c)
	connected()
	c.Start()
	defer c.Close(ReasonClientGone)

	slog.InfoContext(ctx, "live connection established",
		slog.String("event", "live.connected"),
		slog.String("username", username),
		slog.String("conn_id", c.ID()),
	)

	for {
		if s.cfg.HeartbeatTimeout > 0 {
			_ = ws.SetReadDeadline(s.clock.Now().Add(s.cfg.HeartbeatTimeout))
		}

		var msg Message
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			logReadEnd(ctx, c, err)
			break
		}

		s.handleMessage(ctx, c, msg)
	}

	slog.InfoContext(ctx, "live connection closed",
		slog.String("event", "live.disconnected"),
		slog.String("username", username),
		slog.String("conn_id", c.ID()),
	)
}

func (s *Server) handleMessage(ctx context.Context, c *Conn, msg Message) {
	now := s.clock.Now()

	switch msg.Type {
	case MessageHeartbeat:
		c.Touch(now)
		if err := c.Enqueue(Message{Type: MessageHeartbeatResponse, Timestamp: now}); err == nil && s.metrics != nil {
			s.metrics.RecordFrame(ctx, string(MessageHeartbeatResponse))
		}
	case MessageTestNotification:
		c.Touch(now)
		if s.tester == nil {
			return
		}
		if err := s.tester.SendTestNotification(ctx, c.Username()); err != nil {
			slog.WarnContext(ctx, "failed to send test notification",
				slog.String("username", c.Username()),
				slog.String("error", err.Error()),
			)
		}
	default:
		slog.DebugContext(ctx, "ignoring unknown live message",
			slog.String("type", string(msg.Type)),
			slog.String("username", c.Username()),
		)
	}
}

func logReadEnd(ctx context.Context, c *Conn, err error) {
	select {
	case <-c.Done():
		return
	default:
	}
	if errors.Is(err, io.EOF) {
		return
	}
	slog.DebugContext(ctx, "live read ended",
		slog.String("username", c.Username()),
		slog.String("conn_id", c.ID()),
		slog.String("error", err.Error()),
	)
}

type wsWriter struct {
	ws      *websocket.Conn
	timeout time.Duration
}

func (w *wsWriter) WriteMessage(msg Message) error {
	if err := w.ws.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(w.ws, msg)
}

func (w *wsWriter) Close() error {
	return w.ws.Close()
}
