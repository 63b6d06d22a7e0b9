package domain

// DateLayout is the calendar-day key used for daily outcomes.
const DateLayout = "2006-01-02"

type DailyOutcome struct {
	Date              string  `json:"date"`
	FocusMinutes      int     `json:"focus_minutes"`
	DistractionCount  int     `json:"distraction_count"`
	ProductivityScore float64 `json:"productivity_score"`
	HadSession        bool    `json:"had_session"`
}

type StreakState struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}
