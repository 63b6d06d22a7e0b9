package progress

import (
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

var milestones = []int{3, 7, 14, 30, 60, 100}

// IsMilestone reports whether a streak of n days earns a streak alert.
func IsMilestone(n int) bool {
	for _, m := range milestones {
		if m == n {
			return true
		}
	}
	return false
}

// ComputeStreak walks the continuous day series from the earliest outcome to
// the anchor. Dates with no outcome count as breaks. The anchor is today when
// today has an outcome, otherwise the most recent outcome date.
func ComputeStreak(outcomes []*domain.DailyOutcome, today string) domain.StreakState {
	runs := streakRuns(outcomes, today)
	if len(runs) == 0 {
		return domain.StreakState{}
	}

	state := domain.StreakState{CurrentStreak: runs[len(runs)-1].run}
	for _, r := range runs {
		if r.run > state.LongestStreak {
			state.LongestStreak = r.run
		}
	}
	return state
}

type dayRun struct {
	date    string
	outcome *domain.DailyOutcome
	run     int
}

// streakRuns expands outcomes into one entry per calendar day up to the
// anchor, carrying the running streak length at each day.
func streakRuns(outcomes []*domain.DailyOutcome, today string) []dayRun {
	if len(outcomes) == 0 {
		return nil
	}

	byDate := make(map[string]*domain.DailyOutcome, len(outcomes))
	first, last := "", ""
	for _, o := range outcomes {
		if _, err := time.Parse(domain.DateLayout, o.Date); err != nil {
			continue
		}
		byDate[o.Date] = o
		if first == "" || o.Date < first {
			first = o.Date
		}
		if o.Date > last {
			last = o.Date
		}
	}
	if first == "" {
		return nil
	}

	anchor := last
	if _, ok := byDate[today]; ok {
		anchor = today
	}

	start, _ := time.Parse(domain.DateLayout, first)
	end, _ := time.Parse(domain.DateLayout, anchor)

	var (
		runs []dayRun
		run  int
	)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(domain.DateLayout)
		o := byDate[date]
		if o != nil && o.HadSession {
			run++
		} else {
			run = 0
		}
		runs = append(runs, dayRun{date: date, outcome: o, run: run})
	}

	return runs
}
