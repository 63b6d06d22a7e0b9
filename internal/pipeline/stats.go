package pipeline

import (
	"sort"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

type SessionStats struct {
	SessionID              string      `json:"session_id"`
	State                  string      `json:"state"`
	DistractionStreakCount int         `json:"current_distraction_count"`
	NextTier               domain.Tier `json:"next_sound_type"`
	LastNotifiedAt         *time.Time  `json:"last_notified_at,omitempty"`
	StartedAt              time.Time   `json:"started_at"`
}

type DistractionStats struct {
	Username string         `json:"username"`
	Sessions []SessionStats `json:"sessions"`
}

// DistractionStats reports throttle position for each active session of username.
func (p *Pipeline) DistractionStats(username string) DistractionStats {
	p.mu.RLock()
	lanes := make([]*lane, 0)
	for _, l := range p.lanes {
		if l.session.Username == username {
			lanes = append(lanes, l)
		}
	}
	p.mu.RUnlock()

	stats := DistractionStats{Username: username, Sessions: make([]SessionStats, 0, len(lanes))}
	for _, l := range lanes {
		snap, err := p.deps.Throttle.Snapshot(l.session.ID)
		if err != nil {
			continue
		}

		s := SessionStats{
			SessionID:              snap.SessionID,
			State:                  snap.State.String(),
			DistractionStreakCount: snap.DistractionStreakCount,
			NextTier:               snap.NextTier,
			StartedAt:              l.session.StartedAt,
		}
		if !snap.LastNotifiedAt.IsZero() {
			last := snap.LastNotifiedAt
			s.LastNotifiedAt = &last
		}
		stats.Sessions = append(stats.Sessions, s)
	}

	sort.Slice(stats.Sessions, func(i, j int) bool {
		return stats.Sessions[i].StartedAt.Before(stats.Sessions[j].StartedAt)
	})

	return stats
}
