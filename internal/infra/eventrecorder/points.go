//go:build !gcloud

package eventrecorder

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const (
	verdictMeasurement  = "verdict"
	dispatchMeasurement = "dispatch"
	outcomeMeasurement  = "daily_outcome"
)

func verdictPoint(e domain.VerdictEvent) *write.Point {
	return write.NewPoint(
		verdictMeasurement,
		map[string]string{
			"username": e.Username,
			"category": e.Category,
			"source":   e.Source,
		},
		map[string]any{
			"session_id":     e.SessionID,
			"is_distraction": e.IsDistraction,
			"confidence":     e.Confidence,
			"notified":       e.Notified,
		},
		e.ObservedAt,
	)
}

func dispatchPoint(e domain.DispatchEvent) *write.Point {
	return write.NewPoint(
		dispatchMeasurement,
		map[string]string{
			"username": e.Username,
			"type":     e.Type,
			"tier":     e.Tier,
			"outcome":  e.Outcome,
		},
		map[string]any{
			"alert_id": e.AlertID,
		},
		e.At,
	)
}

// outcomePoint is stamped with the outcome's date so a rerun of the same
// day overwrites the previous point.
func outcomePoint(e domain.DailyOutcomeEvent) *write.Point {
	ts, err := time.Parse(domain.DateLayout, e.Outcome.Date)
	if err != nil {
		ts = time.Now()
	}

	return write.NewPoint(
		outcomeMeasurement,
		map[string]string{
			"username": e.Username,
		},
		map[string]any{
			"focus_minutes":      e.Outcome.FocusMinutes,
			"distraction_count":  e.Outcome.DistractionCount,
			"productivity_score": e.Outcome.ProductivityScore,
			"had_session":        e.Outcome.HadSession,
			"current_streak":     e.CurrentStreak,
			"longest_streak":     e.LongestStreak,
		},
		ts,
	)
}
