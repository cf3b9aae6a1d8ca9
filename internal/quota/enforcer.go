package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dailyquota/dailyquota/internal/metrics"
)

// Locker serializes check-then-append for a single user.
type Locker interface {
	// Lock blocks until the user's critical section is held and returns the
	// function releasing it.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// Publisher receives a UsageEvent after every decision.
type Publisher interface {
	PublishUsageEvent(ctx context.Context, event UsageEvent) error
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithLocker closes the check-then-append race by holding a per-user lock
// across the whole decision.
func WithLocker(l Locker) Option {
	return func(e *Enforcer) { e.locker = l }
}

// WithPublisher enables best-effort usage events.
func WithPublisher(p Publisher) Option {
	return func(e *Enforcer) { e.publisher = p }
}

// Enforcer admits an action only while both the daily and the monthly quota
// have room, appending one log entry per admitted action.
//
// Without a Locker, concurrent calls for the same user may all pass the
// count check before any of them appends, so a user can end up over the limit
// by the number of racing calls minus one.
type Enforcer struct {
	reader    *Reader
	locker    Locker
	publisher Publisher
}

// NewEnforcer creates an Enforcer reading and writing through reader's store.
func NewEnforcer(reader *Reader, opts ...Option) *Enforcer {
	e := &Enforcer{reader: reader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limits returns the enforced limits.
func (e *Enforcer) Limits() Limits {
	return e.reader.limits
}

// TryRecord decides whether userID may perform one more action at now.
//
// The daily quota is checked before the monthly one, so a user with both
// quotas exhausted is always rejected with CodeDailyLimitExceeded. Rejections
// are returned in Outcome, not as errors; errors mean the store failed.
func (e *Enforcer) TryRecord(ctx context.Context, userID, payload string, now time.Time) (Outcome, error) {
	if userID == "" {
		return Outcome{}, ErrUnauthenticated
	}

	w := e.reader.calendar.Windows(now)

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, userID)
		if err != nil {
			metrics.StoreErrorsTotal.WithLabelValues("lock").Inc()
			return Outcome{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		defer unlock()
	}

	dayUsed, err := e.reader.count(ctx, userID, w.Day)
	if err != nil {
		return Outcome{}, err
	}
	if dayUsed >= e.reader.limits.Daily {
		return e.reject(ctx, userID, w, CodeDailyLimitExceeded, now)
	}

	monthUsed, err := e.reader.count(ctx, userID, w.Month)
	if err != nil {
		return Outcome{}, err
	}
	if monthUsed >= e.reader.limits.Monthly {
		return e.reject(ctx, userID, w, CodeMonthlyLimitExceeded, now)
	}

	entry := UsageLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Payload:   payload,
		CreatedAt: now.UTC(),
	}
	if err := e.reader.store.Append(ctx, entry); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("append").Inc()
		return Outcome{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	metrics.UsageAppendsTotal.Inc()

	usage, err := e.reader.read(ctx, userID, w)
	if err != nil {
		return Outcome{}, fmt.Errorf("re-reading usage after append: %w", err)
	}

	metrics.QuotaDecisionsTotal.WithLabelValues(OutcomeAccepted).Inc()
	e.publish(ctx, userID, OutcomeAccepted, usage, now)

	return Outcome{Usage: usage}, nil
}

func (e *Enforcer) reject(ctx context.Context, userID string, w Windows, code Code, now time.Time) (Outcome, error) {
	usage, err := e.reader.read(ctx, userID, w)
	if err != nil {
		return Outcome{}, err
	}

	metrics.QuotaDecisionsTotal.WithLabelValues(code.Outcome()).Inc()
	slog.Debug("quota: rejected", "user_id", userID, "code", code,
		"day_used", usage.DayUsed, "month_used", usage.MonthUsed)
	e.publish(ctx, userID, code.Outcome(), usage, now)

	return Outcome{
		Usage:     usage,
		Rejection: &Rejection{Code: code, Usage: usage},
	}, nil
}

func (e *Enforcer) publish(ctx context.Context, userID, outcome string, usage Snapshot, now time.Time) {
	if e.publisher == nil {
		return
	}

	event := UsageEvent{
		UserID:    userID,
		Outcome:   outcome,
		DayUsed:   usage.DayUsed,
		MonthUsed: usage.MonthUsed,
		Timestamp: now.UTC(),
	}
	if err := e.publisher.PublishUsageEvent(ctx, event); err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		slog.Warn("quota: publishing usage event", "error", err, "user_id", userID, "outcome", outcome)
	}
}
