package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/live"
	"github.com/KasumiMercury/primind-focusguard/internal/liveclient"
)

const completeTimeout = 10 * time.Second

type Monitor struct {
	cfg     Config
	api     *API
	windows WindowSource
	now     func() time.Time

	mu  sync.Mutex
	out io.Writer

	sessionID string
	lastTitle string
	reported  int
	alerts    int
	seen      map[string]struct{}
}

func NewMonitor(cfg Config, api *API, windows WindowSource, out io.Writer) *Monitor {
	return &Monitor{
		cfg:     cfg,
		api:     api,
		windows: windows,
		now:     time.Now,
		out:     out,
		seen:    make(map[string]struct{}),
	}
}

// Run starts a session, reports every window change until the configured
// duration elapses or ctx is cancelled, then completes the session.
func (m *Monitor) Run(ctx context.Context) (*CompletedSession, error) {
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}

	started, err := m.api.StartSession(ctx, m.cfg)
	if err != nil {
		return nil, err
	}
	m.sessionID = started.SessionID

	m.printf("Focus session %s started for %q (%s)\n", started.SessionID, m.cfg.TaskDescription, m.cfg.Duration)

	if m.cfg.Live {
		lc := liveclient.New(liveclient.Config{
			URL:               m.cfg.LiveURL(),
			Origin:            m.cfg.ServerURL,
			Token:             started.LiveToken,
			HeartbeatInterval: m.cfg.HeartbeatInterval,
		}, m.printAlert)
		lc.OnConnect(func() { m.pullUnread(ctx) })
		lc.Start(ctx)
		defer lc.Close()
	}

	deadline := time.NewTimer(m.cfg.Duration)
	defer deadline.Stop()
	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	m.sample(ctx)

loop:
	for {
		select {
		case <-ctx.Done():
			m.printf("Monitoring interrupted\n")
			break loop
		case <-deadline.C:
			break loop
		case <-ticker.C:
			m.sample(ctx)
		}
	}

	completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)
	defer cancel()

	done, err := m.api.CompleteSession(completeCtx, started.SessionID)
	if err != nil {
		return nil, err
	}

	m.printf("Session complete: %d distractions, productivity %.0f%%, %d window changes reported\n",
		done.DistractionCount, done.ProductivityScore*100, m.reported)
	return done, nil
}

func (m *Monitor) sample(ctx context.Context) {
	w, err := m.windows.ActiveWindow(ctx)
	if err != nil {
		slog.Debug("failed to read active window", slog.String("error", err.Error()))
		return
	}

	title := w.Label(m.cfg.IncludeProcess)
	if title == "" || title == m.lastTitle {
		return
	}

	res, err := m.api.ReportActivity(ctx, m.sessionID, title, m.now())
	if err != nil {
		if ctx.Err() == nil {
			m.printf("Failed to report activity: %v\n", err)
		}
		return
	}
	m.lastTitle = title
	m.reported++

	marker := "✅"
	if res.IsDistraction {
		marker = "⚠️"
	}
	m.printf("%s %s\n   category=%s confidence=%.2f sentiment=%s source=%s\n   %s\n",
		marker, title, res.Category, res.Confidence, res.Sentiment, res.Source, res.Reasoning)
	if res.NotificationSent {
		m.printf("   notification sent (%s)\n", res.DispatchOutcome)
	}
}

func (m *Monitor) printAlert(p live.NotificationPayload) {
	if !m.markSeen(p.ID) {
		return
	}
	m.printf("🔔 [%s] %s\n", p.SoundType, p.Message)
}

// markSeen reports whether id is new. Alerts without an id are always new.
func (m *Monitor) markSeen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" {
		if _, ok := m.seen[id]; ok {
			return false
		}
		m.seen[id] = struct{}{}
	}
	m.alerts++
	return true
}

// pullUnread prints unread alerts not already shown over the live channel
// and marks them read. The delivered flag is not trusted: a frame written to
// the socket can still be lost with the connection.
func (m *Monitor) pullUnread(ctx context.Context) {
	list, err := m.api.ListNotifications(ctx, m.cfg.Username)
	if err != nil {
		slog.Debug("failed to pull notification history", slog.String("error", err.Error()))
		return
	}

	for _, n := range list {
		if n.Read {
			continue
		}
		m.printAlert(live.NotificationPayload{
			ID:               n.ID,
			NotificationType: n.NotificationType,
			Message:          n.Message,
			SoundType:        n.SoundType,
			WindowTitle:      n.WindowTitle,
			CreatedAt:        n.CreatedAt,
		})
		if err := m.api.MarkRead(ctx, m.cfg.Username, n.ID); err != nil {
			slog.Debug("failed to mark notification read",
				slog.String("notification_id", n.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Alerts is the number of alerts printed so far.
func (m *Monitor) Alerts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alerts
}

func (m *Monitor) printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, format, args...)
}
