package scheduler

import (
	"time"

	"github.com/example/room-availability/internal/calendar"
)

// ResolveStatus returns the effective status of day, falling back to
// defaultStatus when no entry covers it.
func ResolveStatus(entries []StatusEntry, day time.Time, defaultStatus RoomStatus) RoomStatus {
	return ResolveStatusKey(entries, calendar.FormatDateKey(day), defaultStatus)
}

// ResolveStatusKey is ResolveStatus for a precomputed date key.
func ResolveStatusKey(entries []StatusEntry, day string, defaultStatus RoomStatus) RoomStatus {
	if entry, ok := ResolveEntryKey(entries, day); ok {
		return entry.Status
	}
	return defaultStatus
}

// ResolveEntry returns the entry that decides day's status, if any.
func ResolveEntry(entries []StatusEntry, day time.Time) (StatusEntry, bool) {
	return ResolveEntryKey(entries, calendar.FormatDateKey(day))
}

// ResolveEntryKey walks entries from the most recently added to the oldest
// and returns the first one covering day. Should two entries ever overlap,
// the later insertion wins.
func ResolveEntryKey(entries []StatusEntry, day string) (StatusEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Covers(day) {
			return entries[i], true
		}
	}
	return StatusEntry{}, false
}
