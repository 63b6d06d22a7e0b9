// Package pipeline runs observations of a focus session through
// classification, the distraction throttle and alert dispatch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/metrics"
	"github.com/KasumiMercury/primind-focusguard/internal/progress"
	"github.com/KasumiMercury/primind-focusguard/internal/throttle"
)

const (
	defaultLaneBuffer    = 32
	defaultMaxConcurrent = 64
)

type Classifier interface {
	Classify(ctx context.Context, title string, keywords []string) domain.Verdict
}

type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *domain.Alert) (dispatch.Outcome, error)
}

// SessionRecorder folds a finished session into the daily outcome.
type SessionRecorder interface {
	RecordSession(ctx context.Context, session *domain.SessionRecord) (*domain.DailyOutcome, error)
}

type Config struct {
	LaneBuffer    int
	MaxConcurrent int64
}

type Deps struct {
	Classifier  Classifier
	Throttle    *throttle.Throttle
	Dispatcher  AlertDispatcher
	Sessions    domain.SessionRepository
	Preferences domain.PreferenceRepository
	Progress    SessionRecorder
	Recorder    domain.PipelineEventRecorder
	Metrics     *metrics.PipelineMetrics
	Clock       clock.Clock
}

type StartRequest struct {
	Username        string
	TaskDescription string
	Keywords        []string
	DurationMinutes int
}

// CompleteRequest carries client-reported totals. Nil fields are computed
// from what the pipeline observed.
type CompleteRequest struct {
	DistractionCount  *int
	ProductivityScore *float64
}

// Result is what one observation produced.
type Result struct {
	Verdict          domain.Verdict
	NotificationSent bool
	Alert            *domain.Alert
	Outcome          dispatch.Outcome
}

// Pipeline owns one FIFO lane per active session. A lane is the only
// goroutine that drives its session's throttle state.
type Pipeline struct {
	deps Deps
	cfg  Config
	sem  *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	lanes   map[string]*lane
	stopped bool
	wg      sync.WaitGroup
}

func New(deps Deps, cfg Config) *Pipeline {
	if cfg.LaneBuffer <= 0 {
		cfg.LaneBuffer = defaultLaneBuffer
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Throttle == nil {
		deps.Throttle = throttle.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		deps:   deps,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
		ctx:    ctx,
		cancel: cancel,
		lanes:  make(map[string]*lane),
	}
}

// StartSession persists a new session and opens its lane.
func (p *Pipeline) StartSession(ctx context.Context, req StartRequest) (*domain.SessionRecord, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if req.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration_minutes must not be negative", ErrInvalidInput)
	}

	session := &domain.SessionRecord{
		ID:              uuid.NewString(),
		Username:        username,
		TaskDescription: req.TaskDescription,
		Keywords:        cleanKeywords(req.Keywords),
		DurationMinutes: req.DurationMinutes,
		StartedAt:       p.deps.Clock.Now(),
	}

	if err := p.deps.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil, ErrStopped
	}
	if err := p.deps.Throttle.StartSession(session.ID); err != nil {
		return nil, err
	}

	l := newLane(p.ctx, session, p.cfg.LaneBuffer)
	p.lanes[session.ID] = l
	p.wg.Add(1)
	go p.runLane(l)

	if p.deps.Metrics != nil {
		p.deps.Metrics.SessionStarted(ctx)
	}

	slog.InfoContext(ctx, "session started",
		slog.String("session_id", session.ID),
		slog.String("username", username),
		slog.Int("duration_minutes", session.DurationMinutes),
	)

	return session, nil
}

// Observe classifies one window title for the session and waits for the
// lane to process it.
func (p *Pipeline) Observe(ctx context.Context, obs domain.Observation) (*Result, error) {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = p.deps.Clock.Now()
	}

	p.mu.RLock()
	l, ok := p.lanes[obs.SessionID]
	if !ok {
		p.mu.RUnlock()
		return nil, domain.ErrSessionNotFound
	}

	j := &job{ctx: ctx, obs: obs, done: make(chan jobResult, 1)}
	select {
	case l.jobs <- j:
	default:
		p.mu.RUnlock()
		return nil, ErrSessionBusy
	}
	p.mu.RUnlock()

	select {
	case res := <-j.done:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CompleteSession closes the lane and stores the finished session.
func (p *Pipeline) CompleteSession(ctx context.Context, sessionID string, req CompleteRequest) (*domain.SessionRecord, error) {
	session, err := p.finish(ctx, sessionID, true, req)
	if err != nil {
		return nil, err
	}

	if p.deps.Progress != nil {
		if _, err := p.deps.Progress.RecordSession(ctx, session); err != nil {
			slog.WarnContext(ctx, "failed to update daily outcome",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	return session, nil
}

// CancelSession closes the lane without counting the session toward progress.
func (p *Pipeline) CancelSession(ctx context.Context, sessionID string) (*domain.SessionRecord, error) {
	return p.finish(ctx, sessionID, false, CompleteRequest{})
}

func (p *Pipeline) finish(ctx context.Context, sessionID string, completed bool, req CompleteRequest) (*domain.SessionRecord, error) {
	p.mu.Lock()
	l, ok := p.lanes[sessionID]
	if ok {
		delete(p.lanes, sessionID)
		close(l.jobs)
	}
	p.mu.Unlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	l.cancel()
	<-l.stopped
	p.deps.Throttle.EndSession(sessionID)

	if p.deps.Metrics != nil {
		p.deps.Metrics.SessionEnded(ctx)
	}

	session := l.session
	session.EndedAt = p.deps.Clock.Now()
	session.Completed = completed
	session.DistractionCount = l.distractions
	if req.DistractionCount != nil && *req.DistractionCount >= 0 {
		session.DistractionCount = *req.DistractionCount
	}
	session.ProductivityScore = progress.SessionScore(session.DistractionCount)
	if req.ProductivityScore != nil {
		session.ProductivityScore = clampScore(*req.ProductivityScore)
	}

	if err := p.deps.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	slog.InfoContext(ctx, "session ended",
		slog.String("session_id", sessionID),
		slog.String("username", session.Username),
		slog.Bool("completed", completed),
		slog.Int("distraction_count", session.DistractionCount),
	)

	return session, nil
}

// Stop closes every lane and waits for in-flight observations to finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	ids := make([]string, 0, len(p.lanes))
	for id, l := range p.lanes {
		close(l.jobs)
		delete(p.lanes, id)
		ids = append(ids, id)
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	for _, id := range ids {
		p.deps.Throttle.EndSession(id)
	}
}

func (p *Pipeline) ActiveSessions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.lanes)
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
