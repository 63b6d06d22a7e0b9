// Package liveclient keeps an agent connected to the live notification channel.
package liveclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/websocket"

	"github.com/KasumiMercury/primind-focusguard/internal/live"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultInitialBackoff    = 5 * time.Second
	defaultMaxBackoff        = 2 * time.Minute
	defaultMultiplier        = 2.0
	defaultRandomization     = 0.5
	readTimeoutMultiplier    = 3
)

var ErrSuperseded = errors.New("live connection superseded by another client")

type Config struct {
	URL               string
	Origin            string
	Token             string
	HeartbeatInterval time.Duration
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	Multiplier        float64
	Randomization     float64
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.Multiplier < 1 {
		c.Multiplier = defaultMultiplier
	}
	if c.Randomization <= 0 || c.Randomization > 1 {
		c.Randomization = defaultRandomization
	}
	if c.Origin == "" {
		c.Origin = "http://localhost/"
	}
	return c
}

// Client maintains one live connection, reconnecting with capped exponential
// backoff until it is closed or superseded.
type Client struct {
	cfg            Config
	onNotification func(live.NotificationPayload)
	onConnect      func()

	state atomic.Int32

	mu     sync.Mutex
	ws     *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, onNotification func(live.NotificationPayload)) *Client {
	return &Client{
		cfg:            cfg.withDefaults(),
		onNotification: onNotification,
	}
}

// OnConnect registers fn to run after every successful connect.
func (c *Client) OnConnect(fn func()) {
	c.onConnect = fn
}

func (c *Client) State() State {
	return State(c.state.Load())
}

// Start begins connecting in the background. It is a no-op if already started.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)
}

// Close stops reconnecting and closes the current connection.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done, ws := c.cancel, c.done, c.ws
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if ws != nil {
		_ = ws.Close()
	}
	<-done
}

// RequestTestNotification asks the server to push a test alert.
func (c *Client) RequestTestNotification() error {
	return c.send(live.Message{Type: live.MessageTestNotification, Timestamp: time.Now()})
}

func (c *Client) send(msg live.Message) error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()

	if ws == nil {
		return live.ErrNotConnected
	}
	return websocket.JSON.Send(ws, msg)
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	defer c.state.Store(int32(StateDisconnected))

	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.cfg.InitialBackoff,
		RandomizationFactor: c.cfg.Randomization,
		Multiplier:          c.cfg.Multiplier,
		MaxInterval:         c.cfg.MaxBackoff,
	}
	b.Reset()

	for {
		c.state.Store(int32(StateConnecting))

		ws, err := c.dial(ctx)
		if err == nil {
			b.Reset()
			err = c.session(ctx, ws)
			if errors.Is(err, ErrSuperseded) {
				slog.Warn("live connection superseded, not reconnecting")
				return
			}
		} else {
			slog.Debug("live dial failed", slog.String("error", err.Error()))
		}

		c.state.Store(int32(StateDisconnected))
		if ctx.Err() != nil {
			return
		}

		wait := b.NextBackOff()
		slog.Info("live channel disconnected, retrying",
			slog.Duration("backoff", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	wsCfg, err := websocket.NewConfig(c.cfg.URL, c.cfg.Origin)
	if err != nil {
		return nil, err
	}
	if c.cfg.Token != "" {
		wsCfg.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	return wsCfg.DialContext(ctx)
}

func (c *Client) session(ctx context.Context, ws *websocket.Conn) error {
	// Close may run before c.ws is set; cancellation must still unblock Receive.
	stopClose := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stopClose()

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	c.state.Store(int32(StateConnected))

	defer func() {
		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()
		_ = ws.Close()
	}()

	slog.Info("live channel connected", slog.String("url", c.cfg.URL))
	if c.onConnect != nil {
		c.onConnect()
	}

	sessionCtx, stop := context.WithCancel(ctx)
	defer stop()
	go c.heartbeat(sessionCtx, ws)

	for {
		_ = ws.SetReadDeadline(time.Now().Add(readTimeoutMultiplier * c.cfg.HeartbeatInterval))

		var msg live.Message
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return err
		}

		switch msg.Type {
		case live.MessageNotification:
			payload, err := msg.Notification()
			if err != nil {
				slog.Warn("malformed notification frame", slog.String("error", err.Error()))
				continue
			}
			if c.onNotification != nil {
				c.onNotification(*payload)
			}
		case live.MessageSuperseded:
			return ErrSuperseded
		case live.MessageHeartbeatResponse:
		default:
			slog.Debug("ignoring live frame", slog.String("type", string(msg.Type)))
		}
	}
}

func (c *Client) heartbeat(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := websocket.JSON.Send(ws, live.Message{Type: live.MessageHeartbeat, Timestamp: now}); err != nil {
				_ = ws.Close()
				return
			}
		}
	}
}
