package quota

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Window is the half-open UTC interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. End is exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows holds the current local day and month, both expressed in UTC.
type Windows struct {
	Day   Window
	Month Window
}

// Calendar turns UTC instants into local calendar windows for a fixed zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar observing loc.
func NewCalendar(loc *time.Location) *Calendar {
	return &Calendar{loc: loc}
}

// Location returns the zone the calendar observes.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Windows computes the day and month windows containing now.
//
// Boundaries are local midnights converted back to UTC, so a day lasts 23 or
// 25 hours across a DST switch and a month always runs from the 1st to the
// 1st of the next month whatever its length.
func (c *Calendar) Windows(now time.Time) Windows {
	y, m, d := now.In(c.loc).Date()

	return Windows{
		Day: Window{
			Start: time.Date(y, m, d, 0, 0, 0, 0, c.loc).UTC(),
			End:   time.Date(y, m, d+1, 0, 0, 0, 0, c.loc).UTC(),
		},
		Month: Window{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, c.loc).UTC(),
			End:   time.Date(y, m+1, 1, 0, 0, 0, 0, c.loc).UTC(),
		},
	}
}

// LoadLocation resolves the first loadable zone name, trying primary and
// then each fallback in order. Empty names are skipped because the time
// package maps "" to UTC.
func LoadLocation(primary string, fallbacks ...string) (*time.Location, error) {
	names := append([]string{primary}, fallbacks...)

	var tried []string
	for i, name := range names {
		if name == "" {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			slog.Warn("quota: timezone not available", "zone", name, "error", err)
			tried = append(tried, name)
			continue
		}
		if i > 0 {
			slog.Warn("quota: using fallback timezone", "primary", primary, "zone", name)
		}
		return loc, nil
	}

	return nil, fmt.Errorf("%w: tried [%s]", ErrTimezone, strings.Join(tried, ", "))
}
