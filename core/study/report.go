package study

import (
	"math"

	"github.com/matludke/tempocerto/core/activity"
)

type (
	SubjectHours struct {
		Subject string  `json:"subject"`
		Hours   float64 `json:"hours"`
	}

	Stats struct {
		SessionsCompleted int     `json:"sessions_completed"`
		FocusHours        float64 `json:"focus_hours"`
		Efficiency        int     `json:"efficiency"` // percent of activities done
	}

	Report struct {
		BySubject []SubjectHours `json:"by_subject"`
		Stats     Stats          `json:"stats"`
	}
)

// AggregateBySubject groups sessions by subject in first-seen order and sums
// their durations, converted to hours rounded to one decimal place.
func AggregateBySubject(sessions []Session) []SubjectHours {
	totals := make(map[string]int, len(sessions)) // minutes
	order := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if _, seen := totals[s.Subject]; !seen {
			order = append(order, s.Subject)
		}
		totals[s.Subject] += s.Duration
	}

	result := make([]SubjectHours, 0, len(order))
	for _, subject := range order {
		result = append(result, SubjectHours{
			Subject: subject,
			Hours:   roundHours(totals[subject]),
		})
	}
	return result
}

// ComputeStats derives the aggregate report numbers. An empty activity set
// yields an efficiency of 0, not an error.
func ComputeStats(sessions []Session, activities []activity.Activity) Stats {
	var totalMins int
	for _, s := range sessions {
		totalMins += s.Duration
	}

	var efficiency int
	if len(activities) > 0 {
		var done int
		for _, a := range activities {
			if a.IsDone() {
				done++
			}
		}
		efficiency = int(math.Round(float64(done) / float64(len(activities)) * 100))
	}

	return Stats{
		SessionsCompleted: len(sessions),
		FocusHours:        roundHours(totalMins),
		Efficiency:        efficiency,
	}
}

func roundHours(mins int) float64 {
	return math.Round(float64(mins)/60*10) / 10
}
