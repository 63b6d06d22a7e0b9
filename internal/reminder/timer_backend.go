package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
)

// TimerBackend fires jobs from in-process timers. Pending jobs are lost when
// the process exits.
type TimerBackend struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   FireFunc
	clock  clock.Clock
}

func NewTimerBackend(clk clock.Clock) *TimerBackend {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &TimerBackend{
		timers: make(map[string]*time.Timer),
		clock:  clk,
	}
}

func (b *TimerBackend) Bind(fire FireFunc) {
	b.mu.Lock()
	b.fire = fire
	b.mu.Unlock()
}

func (b *TimerBackend) Schedule(_ context.Context, job Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fire == nil {
		return ErrNoBackend
	}
	if t, ok := b.timers[job.Key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	fire := b.fire
	timer = time.AfterFunc(job.FireAt.Sub(b.clock.Now()), func() {
		b.mu.Lock()
		if b.timers[job.Key] == timer {
			delete(b.timers, job.Key)
		}
		b.mu.Unlock()

		fire(context.Background(), job)
	})
	b.timers[job.Key] = timer

	return nil
}

func (b *TimerBackend) Cancel(_ context.Context, job Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[job.Key]; ok {
		t.Stop()
		delete(b.timers, job.Key)
	}
	return nil
}

func (b *TimerBackend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

// Stop cancels every pending timer.
func (b *TimerBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, t := range b.timers {
		t.Stop()
		delete(b.timers, key)
	}
}
