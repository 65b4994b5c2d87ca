package scheduler

import (
	"fmt"
	"strings"

	"github.com/example/room-availability/internal/calendar"
)

// Draft carries the caller supplied attributes of a new entry.
type Draft struct {
	Status       RoomStatus
	BookedBy     string
	CheckoutTime string
}

// UpsertSingleDay replaces whatever entry occupies exactly [day, day] with a
// new single-day entry. Longer entries covering day are not replaced; they
// surface as a conflict.
func UpsertSingleDay(entries []StatusEntry, day string, draft Draft, id string) ([]StatusEntry, error) {
	if !calendar.IsDateKey(day) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	entry, err := buildEntry(id, day, day, draft)
	if err != nil {
		return nil, err
	}

	replaced := make([]string, 0, 1)
	for _, existing := range entries {
		if existing.StartDate == day && existing.EndDate == day {
			replaced = append(replaced, existing.ID)
		}
	}

	if conflicting, ok := FindOverlap(entries, day, day, replaced...); ok {
		return nil, newConflictError(conflicting)
	}

	out := make([]StatusEntry, 0, len(entries)+1)
	for _, existing := range entries {
		if existing.StartDate == day && existing.EndDate == day {
			continue
		}
		out = append(out, existing)
	}
	return append(out, entry), nil
}

// AddRange appends a new entry spanning [start, end] after checking it
// against every existing entry.
func AddRange(entries []StatusEntry, start, end string, draft Draft, id string) ([]StatusEntry, error) {
	if !calendar.IsDateKey(start) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, start)
	}
	if !calendar.IsDateKey(end) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, end)
	}
	if start > end {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, start, end)
	}
	entry, err := buildEntry(id, start, end, draft)
	if err != nil {
		return nil, err
	}

	if conflicting, ok := FindOverlap(entries, start, end); ok {
		return nil, newConflictError(conflicting)
	}

	out := make([]StatusEntry, 0, len(entries)+1)
	out = append(out, entries...)
	return append(out, entry), nil
}

// RemoveEntry drops the entry with the given id. Unknown ids are a no-op.
func RemoveEntry(entries []StatusEntry, id string) []StatusEntry {
	out := make([]StatusEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == id {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func buildEntry(id, start, end string, draft Draft) (StatusEntry, error) {
	if strings.TrimSpace(id) == "" {
		return StatusEntry{}, ErrMissingID
	}
	if !draft.Status.Valid() {
		return StatusEntry{}, fmt.Errorf("%w: %q", ErrInvalidStatus, draft.Status)
	}
	bookedBy := strings.TrimSpace(draft.BookedBy)
	if draft.Status == StatusOccupied && bookedBy == "" {
		return StatusEntry{}, ErrBookingNameRequired
	}

	entry := StatusEntry{
		ID:        id,
		Status:    draft.Status,
		StartDate: start,
		EndDate:   end,
		BookedBy:  bookedBy,
	}

	checkout := strings.TrimSpace(draft.CheckoutTime)
	if checkout != "" && draft.Status == StatusOccupied && start == end {
		if !ValidCheckoutTime(checkout) {
			return StatusEntry{}, fmt.Errorf("%w: %q", ErrInvalidCheckoutTime, checkout)
		}
		entry.CheckoutTime = checkout
	}
	return entry, nil
}
