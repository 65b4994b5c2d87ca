// Package calendar provides day arithmetic over local-midnight dates and the
// YYYY-MM-DD keys used to persist and compare schedule ranges.
//
// Keys are zero padded, so lexicographic order on keys equals chronological
// order. Range checks compare keys directly instead of re-parsing dates.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateKeyLayout is the layout of persisted and wire-level calendar days.
const DateKeyLayout = "2006-01-02"

// ErrInvalidDateKey indicates a string that is not a YYYY-MM-DD calendar day.
var ErrInvalidDateKey = errors.New("calendar: invalid date key")

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDateKey renders the local year, month and day fields of t. No
// timezone conversion happens, so callers must hand in dates already placed
// in the display location.
func FormatDateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey parses a YYYY-MM-DD key into local midnight of loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(key) != len(DateKeyLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// IsDateKey reports whether key is a well formed YYYY-MM-DD calendar day.
func IsDateKey(key string) bool {
	_, err := ParseDateKey(key, time.UTC)
	return err == nil
}

// DayOffset returns the whole-day difference to - from using calendar fields
// only, so DST transitions in either location never produce fractional days.
func DayOffset(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// AddDays shifts t by n calendar days and normalizes to local midnight.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// AddDaysToKey shifts a date key by n days.
func AddDaysToKey(key string, n int) (string, error) {
	t, err := ParseDateKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	return FormatDateKey(AddDays(t, n)), nil
}

// ContainsKey reports whether key lies within the inclusive range [start, end].
func ContainsKey(start, end, key string) bool {
	return start <= key && key <= end
}

// RangesOverlap applies the closed-interval intersection test to two key ranges.
func RangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// RangeLabel renders an inclusive key range for user-facing messages, for
// example "Jun 1–Jun 3". The year is appended when the range spans years.
func RangeLabel(start, end string) string {
	s, serr := ParseDateKey(start, time.UTC)
	e, eerr := ParseDateKey(end, time.UTC)
	if serr != nil || eerr != nil {
		if start == end {
			return start
		}
		return start + "–" + end
	}
	if start == end {
		return s.Format("Jan 2")
	}
	if s.Year() != e.Year() {
		return s.Format("Jan 2, 2006") + "–" + e.Format("Jan 2, 2006")
	}
	return s.Format("Jan 2") + "–" + e.Format("Jan 2")
}
