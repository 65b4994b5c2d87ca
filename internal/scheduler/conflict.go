package scheduler

import (
	"fmt"

	"github.com/example/room-availability/internal/calendar"
)

// Conflict describes the existing entry a candidate collided with, in a form
// ready for user-facing messages.
type Conflict struct {
	ConflictingStatus     RoomStatus
	ConflictingRangeLabel string
}

// ConflictError reports that a candidate range overlaps an existing entry.
type ConflictError struct {
	Entry    StatusEntry
	Conflict Conflict
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("scheduler: overlaps %s entry %s", e.Conflict.ConflictingStatus, e.Conflict.ConflictingRangeLabel)
}

func newConflictError(entry StatusEntry) *ConflictError {
	return &ConflictError{Entry: entry, Conflict: describeConflict(entry)}
}

func describeConflict(entry StatusEntry) Conflict {
	return Conflict{
		ConflictingStatus:     entry.Status,
		ConflictingRangeLabel: calendar.RangeLabel(entry.StartDate, entry.EndDate),
	}
}

// FindOverlap returns the first entry, in list order, whose range intersects
// [start, end]. Entries whose id appears in excludeIDs are skipped.
func FindOverlap(entries []StatusEntry, start, end string, excludeIDs ...string) (StatusEntry, bool) {
	for _, entry := range entries {
		if excluded(entry.ID, excludeIDs) {
			continue
		}
		if calendar.RangesOverlap(start, end, entry.StartDate, entry.EndDate) {
			return entry, true
		}
	}
	return StatusEntry{}, false
}

// CheckConflict runs the overlap check for a proposed range against a room's
// current entries. The caller decides which entries are being replaced and
// passes their ids as excludeIDs.
func CheckConflict(entries []StatusEntry, start, end string, excludeIDs ...string) (Conflict, bool) {
	entry, ok := FindOverlap(entries, start, end, excludeIDs...)
	if !ok {
		return Conflict{}, false
	}
	return describeConflict(entry), true
}

func excluded(id string, ids []string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
