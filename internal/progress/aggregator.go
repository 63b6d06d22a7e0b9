package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const DefaultReportDays = 30

// Day is one calendar day in a progress report.
type Day struct {
	domain.DailyOutcome
	StreakDays int  `json:"streak_days"`
	IsBreak    bool `json:"is_break"`
}

type Report struct {
	Username            string  `json:"username"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	TotalFocusMinutes   int     `json:"total_focus_minutes"`
	AverageProductivity float64 `json:"average_productivity"`
	Days                []Day   `json:"days"`
}

// Aggregator materializes daily outcomes from session records and derives
// streaks from the stored series on every read.
type Aggregator struct {
	sessions domain.SessionRepository
	outcomes domain.OutcomeRepository
	loc      *time.Location
	clock    clock.Clock
}

func NewAggregator(sessions domain.SessionRepository, outcomes domain.OutcomeRepository, loc *time.Location, clk clock.Clock) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &Aggregator{
		sessions: sessions,
		outcomes: outcomes,
		loc:      loc,
		clock:    clk,
	}
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Today is the current calendar date in the aggregator's location.
func (a *Aggregator) Today() string {
	return a.clock.Now().In(a.loc).Format(domain.DateLayout)
}

// RecordSession re-materializes the day the session started on.
func (a *Aggregator) RecordSession(ctx context.Context, session *domain.SessionRecord) (*domain.DailyOutcome, error) {
	date := session.StartedAt.In(a.loc).Format(domain.DateLayout)
	return a.MaterializeDay(ctx, session.Username, date)
}

// MaterializeDay rebuilds and stores the outcome for one user and date.
// Running it again for the same day overwrites the same record.
func (a *Aggregator) MaterializeDay(ctx context.Context, username, date string) (*domain.DailyOutcome, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, a.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDate, date)
	}

	sessions, err := a.sessions.ListByUser(ctx, username, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	outcome := &domain.DailyOutcome{Date: date}
	for _, o := range BuildDailyOutcomes(sessions, a.loc) {
		if o.Date == date {
			outcome = o
			break
		}
	}

	if err := a.outcomes.SaveOutcome(ctx, username, outcome); err != nil {
		return nil, fmt.Errorf("save outcome: %w", err)
	}

	return outcome, nil
}

func (a *Aggregator) Recompute(ctx context.Context, username string) (domain.StreakState, error) {
	return a.StreakAt(ctx, username, a.Today())
}

// StreakAt computes the streak as seen on date.
func (a *Aggregator) StreakAt(ctx context.Context, username, date string) (domain.StreakState, error) {
	outcomes, err := a.outcomes.ListOutcomes(ctx, username)
	if err != nil {
		return domain.StreakState{}, fmt.Errorf("list outcomes: %w", err)
	}

	return ComputeStreak(outcomes, date), nil
}

// Progress reports the last days calendar days ending today.
func (a *Aggregator) Progress(ctx context.Context, username string, days int) (*Report, error) {
	if days <= 0 {
		days = DefaultReportDays
	}

	outcomes, err := a.outcomes.ListOutcomes(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	now := a.clock.Now().In(a.loc)
	today := now.Format(domain.DateLayout)
	from := now.AddDate(0, 0, -(days - 1)).Format(domain.DateLayout)

	streak := ComputeStreak(outcomes, today)
	report := &Report{
		Username:      username,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		Days:          []Day{},
	}

	var (
		scoreSum float64
		scored   int
	)
	for _, r := range streakRuns(outcomes, today) {
		if r.date < from || r.date > today {
			continue
		}

		day := Day{DailyOutcome: domain.DailyOutcome{Date: r.date}, StreakDays: r.run}
		if r.outcome != nil {
			day.DailyOutcome = *r.outcome
		}
		day.IsBreak = !day.HadSession

		report.TotalFocusMinutes += day.FocusMinutes
		if day.HadSession {
			scoreSum += day.ProductivityScore
			scored++
		}
		report.Days = append(report.Days, day)
	}

	if scored > 0 {
		report.AverageProductivity = scoreSum / float64(scored)
	}

	return report, nil
}
