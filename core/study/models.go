package study

import "time"

// Session is a logged record of time spent on an activity. Immutable once
// created: it is only ever listed, or removed along with the owning account.
type Session struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	StartTime  time.Time `json:"start_time"` // UTC
	EndTime    time.Time `json:"end_time"`   // UTC
	Duration   int       `json:"duration"` // minutes
	Subject    string    `json:"subject"`  // denormalized from the activity at logging time
}
