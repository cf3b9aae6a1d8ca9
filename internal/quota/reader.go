package quota

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dailyquota/dailyquota/internal/metrics"
)

// Reader computes usage snapshots from the log store. It has no side effects.
type Reader struct {
	store    Store
	calendar *Calendar
	limits   Limits
}

// NewReader creates a new usage Reader.
func NewReader(store Store, calendar *Calendar, limits Limits) *Reader {
	return &Reader{
		store:    store,
		calendar: calendar,
		limits:   limits,
	}
}

// Limits returns the configured daily and monthly limits.
func (r *Reader) Limits() Limits {
	return r.limits
}

// ReadUsage returns the user's usage in the windows containing now.
func (r *Reader) ReadUsage(ctx context.Context, userID string, now time.Time) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrUnauthenticated
	}
	return r.read(ctx, userID, r.calendar.Windows(now))
}

// read runs the day and month counts concurrently.
func (r *Reader) read(ctx context.Context, userID string, w Windows) (Snapshot, error) {
	var dayUsed, monthUsed int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.count(gctx, userID, w.Day)
		dayUsed = n
		return err
	})
	g.Go(func() error {
		n, err := r.count(gctx, userID, w.Month)
		monthUsed = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return newSnapshot(r.limits, w, dayUsed, monthUsed), nil
}

func (r *Reader) count(ctx context.Context, userID string, w Window) (int, error) {
	n, err := r.store.CountInRange(ctx, userID, w.Start, w.End)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return n, nil
}
