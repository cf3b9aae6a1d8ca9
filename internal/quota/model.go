package quota

import (
	"time"

	"github.com/google/uuid"
)

// Limits caps accepted actions per local calendar day and month.
type Limits struct {
	Daily   int
	Monthly int
}

// UsageLogEntry matches the usage_logs table schema. Entries are append-only.
type UsageLogEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at_utc"`
}

// Snapshot is the usage of one user inside the current day and month windows.
// It is computed on every read and never stored.
type Snapshot struct {
	DayUsed        int       `json:"dayUsed"`
	DayRemaining   int       `json:"dayRemaining"`
	MonthUsed      int       `json:"monthUsed"`
	MonthRemaining int       `json:"monthRemaining"`
	DayResetAt     time.Time `json:"dayResetAt"`
	MonthResetAt   time.Time `json:"monthResetAt"`
}

func newSnapshot(limits Limits, w Windows, dayUsed, monthUsed int) Snapshot {
	return Snapshot{
		DayUsed:        dayUsed,
		DayRemaining:   max(0, limits.Daily-dayUsed),
		MonthUsed:      monthUsed,
		MonthRemaining: max(0, limits.Monthly-monthUsed),
		DayResetAt:     w.Day.End,
		MonthResetAt:   w.Month.End,
	}
}

// Outcome is the result of TryRecord. Rejection is nil when the action was
// accepted and logged.
type Outcome struct {
	Usage     Snapshot
	Rejection *Rejection
}

// Accepted reports whether a usage log entry was appended.
func (o Outcome) Accepted() bool {
	return o.Rejection == nil
}

// UsageEvent is published after every TryRecord decision.
type UsageEvent struct {
	UserID    string    `json:"user_id"`
	Outcome   string    `json:"outcome"`
	DayUsed   int       `json:"day_used"`
	MonthUsed int       `json:"month_used"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome labels shared by events and metrics.
const (
	OutcomeAccepted = "accepted"
)
