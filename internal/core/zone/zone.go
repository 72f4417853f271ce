// Package zone validates timezone names and converts instants between their
// UTC storage form and the wall-clock form recurrence is evaluated in.
//
// Conversions are pure functions of (instant, timezone, tz database). Nothing
// is cached between calls.
package zone

import (
	"fmt"
	"strings"
	"time"

	// Embedded IANA database so resolution does not depend on the host.
	_ "time/tzdata"
)

// IsValidTimezone reports whether name resolves against the timezone database.
// It never panics or returns an error; callers map false to their own error.
func IsValidTimezone(name string) bool {
	_, err := Load(name)
	return err == nil
}

// Load resolves a timezone name. The empty string is rejected rather than
// silently treated as UTC.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("timezone is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// ToLocal expresses an instant in the wall clock of loc. The instant is unchanged.
func ToLocal(instant time.Time, loc *time.Location) time.Time {
	return instant.In(loc)
}

// ToUTC expresses a zoned instant in UTC for storage.
func ToUTC(local time.Time) time.Time {
	return local.UTC()
}

// WallClock builds the instant a wall clock in loc shows for the given fields.
// A nonexistent time (spring-forward gap) resolves forward by the length of
// the gap, so 00:00 on a day whose midnight is skipped becomes 01:00 of that
// same day. An ambiguous time (fall-back overlap) resolves to whichever
// instant time.Date picks, consistently for the same fields.
func WallClock(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)

	// time.Date may normalize a gap time backward. Measure how far the wall
	// clock it produced falls short of the requested one and move past it.
	want := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	got := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	if got.Before(want) {
		t = t.Add(want.Sub(got))
	}
	return t
}

// TruncateMinute drops seconds and sub-seconds from an instant in its own
// location. Offsets in use since 1972 are whole minutes, so truncating the
// absolute instant is equivalent to truncating the wall clock.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// StartOfDay returns local midnight (or the first valid instant after it) of
// the day t falls on in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return WallClock(l.Year(), l.Month(), l.Day(), 0, 0, loc)
}
