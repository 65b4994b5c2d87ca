// Package scheduler holds the availability scheduling core: per-room status
// entry lists, latest-entry-wins resolution, overlap detection, timeline
// materialization and identity-based audit diffing.
//
// Every function here is pure. Entry lists passed in are never mutated; the
// mutating helpers return fresh slices.
package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RoomStatus is the effective state of a room on a calendar day.
type RoomStatus string

const (
	StatusAvailable   RoomStatus = "available"
	StatusOccupied    RoomStatus = "occupied"
	StatusMaintenance RoomStatus = "maintenance"
	StatusCleaning    RoomStatus = "cleaning"
)

// Statuses lists every supported status in display order.
var Statuses = []RoomStatus{StatusAvailable, StatusOccupied, StatusMaintenance, StatusCleaning}

// Valid reports whether s is one of the supported statuses.
func (s RoomStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusCleaning:
		return true
	}
	return false
}

// ParseStatus normalizes and validates a status name.
func ParseStatus(value string) (RoomStatus, error) {
	status := RoomStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return status, nil
}

// StatusEntry assigns a status to a room for an inclusive range of days.
// StartDate and EndDate are YYYY-MM-DD keys.
type StatusEntry struct {
	ID           string
	Status       RoomStatus
	StartDate    string
	EndDate      string
	BookedBy     string
	CheckoutTime string
}

// SingleDay reports whether the entry covers exactly one day.
func (e StatusEntry) SingleDay() bool {
	return e.StartDate == e.EndDate
}

// Covers reports whether the entry's range contains the day key.
func (e StatusEntry) Covers(day string) bool {
	return e.StartDate <= day && day <= e.EndDate
}

var (
	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("scheduler: start date is after end date")
	// ErrBookingNameRequired is returned when an occupied entry has no booker name.
	ErrBookingNameRequired = errors.New("scheduler: booking name required")
	// ErrInvalidStatus is returned for statuses outside the supported set.
	ErrInvalidStatus = errors.New("scheduler: invalid status")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD keys.
	ErrInvalidDate = errors.New("scheduler: invalid date")
	// ErrInvalidCheckoutTime is returned for checkout times that are not HH:MM.
	ErrInvalidCheckoutTime = errors.New("scheduler: invalid checkout time")
	// ErrMissingID is returned when an entry without identity reaches validation.
	ErrMissingID = errors.New("scheduler: entry id required")
	// ErrDuplicateID is returned when two entries of one room share an id.
	ErrDuplicateID = errors.New("scheduler: duplicate entry id")
)

var checkoutTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidCheckoutTime reports whether value is a 24h HH:MM time.
func ValidCheckoutTime(value string) bool {
	return checkoutTimePattern.MatchString(value)
}

func cloneEntries(entries []StatusEntry) []StatusEntry {
	if len(entries) == 0 {
		return []StatusEntry{}
	}
	out := make([]StatusEntry, len(entries))
	copy(out, entries)
	return out
}
