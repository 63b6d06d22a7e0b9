// Package progress turns completed sessions into daily outcomes and streaks.
package progress

import (
	"sort"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const distractionPenalty = 0.1

// SessionScore is 1 minus 0.1 per distraction, floored at zero.
func SessionScore(distractions int) float64 {
	score := 1 - distractionPenalty*float64(distractions)
	if score < 0 {
		return 0
	}
	return score
}

// BuildDailyOutcomes groups sessions by their local start date. Only completed
// sessions contribute focus minutes, distractions and score; a day whose
// sessions were all abandoned appears with HadSession false.
func BuildDailyOutcomes(sessions []*domain.SessionRecord, loc *time.Location) []*domain.DailyOutcome {
	if loc == nil {
		loc = time.UTC
	}

	type acc struct {
		outcome  *domain.DailyOutcome
		scoreSum float64
		scored   int
	}

	byDate := make(map[string]*acc)
	for _, s := range sessions {
		date := s.StartedAt.In(loc).Format(domain.DateLayout)
		a, ok := byDate[date]
		if !ok {
			a = &acc{outcome: &domain.DailyOutcome{Date: date}}
			byDate[date] = a
		}
		if !s.Completed {
			continue
		}

		a.outcome.HadSession = true
		a.outcome.FocusMinutes += s.DurationMinutes
		a.outcome.DistractionCount += s.DistractionCount
		a.scoreSum += s.ProductivityScore
		a.scored++
	}

	outcomes := make([]*domain.DailyOutcome, 0, len(byDate))
	for _, a := range byDate {
		if a.scored > 0 {
			a.outcome.ProductivityScore = a.scoreSum / float64(a.scored)
		}
		outcomes = append(outcomes, a.outcome)
	}

	SortOutcomes(outcomes)
	return outcomes
}

// SortOutcomes orders outcomes by ascending date.
func SortOutcomes(outcomes []*domain.DailyOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Date < outcomes[j].Date
	})
}
