package throttle

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

// Decision is the result of feeding one verdict to the throttle.
type Decision struct {
	Notify bool
	Tier   domain.Tier
	// Count is the distraction ordinal within the current escalation cycle.
	Count int
	State State
}

type Snapshot struct {
	SessionID              string
	State                  State
	DistractionStreakCount int
	LastNotifiedAt         time.Time
	NextTier               domain.Tier
}

type sessionState struct {
	state          atomic.Int32
	lastNotifiedAt atomic.Int64
	mutating       atomic.Bool
}

// Throttle owns escalation state for every active session. Each session must
// be driven by a single goroutine; overlapping Observe calls for one session
// are a programming error and panic.
type Throttle struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

func New() *Throttle {
	return &Throttle{
		sessions: make(map[string]*sessionState),
	}
}

func (t *Throttle) StartSession(sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[sessionID]; ok {
		return domain.ErrSessionAlreadyActive
	}
	t.sessions[sessionID] = &sessionState{}
	return nil
}

// EndSession discards the session's state and returns its final snapshot.
func (t *Throttle) EndSession(sessionID string) (Snapshot, bool) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	delete(t.sessions, sessionID)
	t.mu.Unlock()

	if !ok {
		return Snapshot{}, false
	}
	return s.snapshot(sessionID), true
}

func (t *Throttle) Observe(sessionID string, distracting bool, now time.Time) (Decision, error) {
	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return Decision{}, domain.ErrSessionNotFound
	}

	if !s.mutating.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("throttle: concurrent mutation of session %s", sessionID))
	}
	defer s.mutating.Store(false)

	event := EventProductive
	if distracting {
		event = EventDistracting
	}

	current := State(s.state.Load())
	tr := transitions[current][event]

	decision := Decision{
		Notify: tr.action != ActionNone,
		Tier:   tr.action.Tier(),
		State:  tr.next,
	}
	if decision.Notify {
		decision.Count = int(tr.next)
		s.lastNotifiedAt.Store(now.UnixNano())
	}

	next := tr.next
	if next == StateEscalate {
		next = transitions[StateEscalate][event].next
	}
	s.state.Store(int32(next))

	return decision, nil
}

func (t *Throttle) Snapshot(sessionID string) (Snapshot, error) {
	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return s.snapshot(sessionID), nil
}

func (s *sessionState) snapshot(sessionID string) Snapshot {
	state := State(s.state.Load())

	var last time.Time
	if n := s.lastNotifiedAt.Load(); n != 0 {
		last = time.Unix(0, n)
	}

	return Snapshot{
		SessionID:              sessionID,
		State:                  state,
		DistractionStreakCount: int(state),
		LastNotifiedAt:         last,
		NextTier:               nextTier(state),
	}
}
