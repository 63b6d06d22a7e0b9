package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
)

const shardCount = 32

// ConnState is the user-visible state of a live channel.
type ConnState string

const (
	StateDisconnected ConnState = "DISCONNECTED"
	StateConnecting   ConnState = "CONNECTING"
	StateConnected    ConnState = "CONNECTED"
)

type shard struct {
	mu         sync.Mutex
	conns      map[string]*Conn
	connecting map[string]int
}

// Registry maps a username to its single authoritative connection. Users are
// spread over independently locked shards.
type Registry struct {
	shards  [shardCount]*shard
	timeout time.Duration
	metrics *metrics.LiveMetrics
}

// NewRegistry creates a registry whose sweeper drops connections silent for longer than timeout.
func NewRegistry(timeout time.Duration, m *metrics.LiveMetrics) *Registry {
	r := &Registry{timeout: timeout, metrics: m}
	for i := range r.shards {
		r.shards[i] = &shard{
			conns:      make(map[string]*Conn),
			connecting: make(map[string]int),
		}
	}
	return r
}

func (r *Registry) shardFor(username string) *shard {
	return r.shards[xxhash.Sum64String(username)%shardCount]
}

// BeginConnect marks a handshake in progress. The returned func ends it.
func (r *Registry) BeginConnect(username string) func() {
	s := r.shardFor(username)
	s.mu.Lock()
	s.connecting[username]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.connecting[username]--; s.connecting[username] <= 0 {
				delete(s.connecting, username)
			}
			s.mu.Unlock()
		})
	}
}

// Register makes c the authoritative connection for its user. A previous
// connection is superseded and returned.
func (r *Registry) Register(c *Conn) *Conn {
	c.onClose = r.handleClose

	s := r.shardFor(c.username)
	s.mu.Lock()
	prev := s.conns[c.username]
	s.conns[c.username] = c
	s.mu.Unlock()

	ctx := context.Background()
	if r.metrics != nil {
		r.metrics.ConnectionOpened(ctx)
	}

	if prev != nil {
		slog.Info("live connection superseded",
			slog.String("event", "live.superseded"),
			slog.String("username", c.username),
			slog.String("old_conn_id", prev.id),
			slog.String("new_conn_id", c.id),
		)
		if r.metrics != nil {
			r.metrics.RecordSupersede(ctx)
		}
		prev.Supersede(c.connectedAt)
	}

	return prev
}

// Remove deletes c only if it is still the registered connection for its user.
func (r *Registry) Remove(c *Conn) bool {
	s := r.shardFor(c.username)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns[c.username] != c {
		return false
	}
	delete(s.conns, c.username)
	return true
}

func (r *Registry) Lookup(username string) (*Conn, bool) {
	s := r.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns[username]
	return c, ok
}

func (r *Registry) State(username string) ConnState {
	s := r.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[username]; ok {
		return StateConnected
	}
	if s.connecting[username] > 0 {
		return StateConnecting
	}
	return StateDisconnected
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.conns)
		s.mu.Unlock()
	}
	return n
}

// Deliver pushes alert to the user's live connection, if any, and returns
// once the frame has been written.
func (r *Registry) Deliver(ctx context.Context, alert *domain.Alert) error {
	c, ok := r.Lookup(alert.Username)
	if !ok {
		return ErrNotConnected
	}

	msg, err := NewNotificationMessage(alert)
	if err != nil {
		return err
	}
	if err := c.Send(ctx, msg); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.RecordFrame(ctx, string(MessageNotification))
	}
	return nil
}

// Sweep closes every connection whose last heartbeat is older than the timeout.
func (r *Registry) Sweep(now time.Time) []string {
	var expired []*Conn

	for _, s := range r.shards {
		s.mu.Lock()
		for username, c := range s.conns {
			if now.Sub(c.LastHeartbeat()) > r.timeout {
				delete(s.conns, username)
				expired = append(expired, c)
			}
		}
		s.mu.Unlock()
	}

	usernames := make([]string, 0, len(expired))
	for _, c := range expired {
		slog.Info("live connection heartbeat timeout",
			slog.String("event", "live.heartbeat.timeout"),
			slog.String("username", c.username),
			slog.String("conn_id", c.id),
			slog.Time("last_heartbeat", c.LastHeartbeat()),
		)
		c.Close(ReasonHeartbeatTimeout)
		usernames = append(usernames, c.username)
	}

	return usernames
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// CloseAll disconnects every client, used on shutdown.
func (r *Registry) CloseAll() {
	var all []*Conn
	for _, s := range r.shards {
		s.mu.Lock()
		for username, c := range s.conns {
			all = append(all, c)
			delete(s.conns, username)
		}
		s.mu.Unlock()
	}

	for _, c := range all {
		c.Close(ReasonShutdown)
	}
}

func (r *Registry) handleClose(c *Conn, reason CloseReason) {
	r.Remove(c)
	if r.metrics != nil {
		r.metrics.ConnectionClosed(context.Background(), string(reason))
	}
}
