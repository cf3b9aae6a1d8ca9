package quota

import "errors"

var (
	// ErrUnauthenticated is returned when no user identifier was resolved for the caller.
	ErrUnauthenticated = errors.New("unauthenticated caller")

	// ErrStoreUnavailable wraps every failure of the usage log store.
	ErrStoreUnavailable = errors.New("usage store unavailable")

	// ErrTimezone is returned when none of the configured zone names can be loaded.
	ErrTimezone = errors.New("timezone resolution failed")

	// ErrLockBusy is returned when a per-user lock is not acquired within the wait budget.
	ErrLockBusy = errors.New("user lock busy")
)

// Code is the machine readable reason of a rejection.
type Code string

const (
	CodeDailyLimitExceeded   Code = "DAILY_LIMIT_EXCEEDED"
	CodeMonthlyLimitExceeded Code = "MONTHLY_LIMIT_EXCEEDED"
)

// Outcome returns the lowercase label used in events and metrics.
func (c Code) Outcome() string {
	switch c {
	case CodeDailyLimitExceeded:
		return "daily_limit_exceeded"
	case CodeMonthlyLimitExceeded:
		return "monthly_limit_exceeded"
	default:
		return "rejected"
	}
}

// Rejection describes an exhausted quota. Usage is re-read after the
// decision so clients see current numbers.
type Rejection struct {
	Code  Code
	Usage Snapshot
}

// Message is the default English description of the rejection.
func (r *Rejection) Message() string {
	switch r.Code {
	case CodeDailyLimitExceeded:
		return "daily limit exceeded"
	case CodeMonthlyLimitExceeded:
		return "monthly limit exceeded"
	default:
		return "limit exceeded"
	}
}
