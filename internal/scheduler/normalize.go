package scheduler

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/example/room-availability/internal/calendar"
)

// EntryError ties a validation failure to the position of the offending
// entry in a replacement list.
type EntryError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// Normalize returns the persisted form of a list: sorted by start date then
// id, with occupied bookers trimmed.
func Normalize(entries []StatusEntry) []StatusEntry {
	out := cloneEntries(entries)
	for i := range out {
		if out[i].Status == StatusOccupied {
			out[i].BookedBy = strings.TrimSpace(out[i].BookedBy)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDate == out[j].StartDate {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// ValidateEntries checks a full replacement list: every entry must be
// structurally valid, ids must be unique and no two ranges may intersect.
// The first failure is returned wrapped in an *EntryError.
func ValidateEntries(entries []StatusEntry) error {
	seen := make(map[string]struct{}, len(entries))
	accepted := make([]StatusEntry, 0, len(entries))
	for i, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return &EntryError{Index: i, Err: err}
		}
		if _, dup := seen[entry.ID]; dup {
			return &EntryError{Index: i, Err: fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)}
		}
		seen[entry.ID] = struct{}{}
		if conflicting, ok := FindOverlap(accepted, entry.StartDate, entry.EndDate); ok {
			return &EntryError{Index: i, Err: newConflictError(conflicting)}
		}
		accepted = append(accepted, entry)
	}
	return nil
}

func validateEntry(entry StatusEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return ErrMissingID
	}
	if !entry.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, entry.Status)
	}
	if !calendar.IsDateKey(entry.StartDate) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, entry.StartDate)
	}
	if !calendar.IsDateKey(entry.EndDate) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, entry.EndDate)
	}
	if entry.StartDate > entry.EndDate {
		return fmt.Errorf("%w: %s after %s", ErrInvalidRange, entry.StartDate, entry.EndDate)
	}
	if entry.Status == StatusOccupied && strings.TrimSpace(entry.BookedBy) == "" {
		return ErrBookingNameRequired
	}
	if entry.CheckoutTime != "" && !ValidCheckoutTime(entry.CheckoutTime) {
		return fmt.Errorf("%w: %q", ErrInvalidCheckoutTime, entry.CheckoutTime)
	}
	return nil
}

// Version fingerprints a room's normalized entry list. Two lists with the
// same normalized content share a version regardless of insertion order.
func Version(entries []StatusEntry) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only reachable with an oversized key.
		panic(err)
	}
	for _, entry := range Normalize(entries) {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1e",
			entry.ID, entry.Status, entry.StartDate, entry.EndDate, entry.BookedBy, entry.CheckoutTime)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
