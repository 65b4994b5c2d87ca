package application

import (
	"time"

	"github.com/example/room-availability/internal/scheduler"
)

// Room represents a bookable room and the status it falls back to on days
// without a schedule entry.
type Room struct {
	Number   int
	Type     string
	Status   scheduler.RoomStatus
	Capacity int
	Floor    *int
	Zone     string
	Name     string
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Number   int
	Type     string
	Status   string
	Capacity int
	Floor    *int
	Zone     string
	Name     string
}

// RoomFilter narrows room listings. Zero values match everything.
type RoomFilter struct {
	Floor *int
	Type  string
	Zone  string
}

// RoomType is a named category of rooms.
type RoomType struct {
	ID              string
	Name            string
	Description     string
	DefaultCapacity int
}

// RoomTypeInput captures caller provided room type fields.
type RoomTypeInput struct {
	Name            string
	Description     string
	DefaultCapacity int
}

// ActivityEvent is an audit record of a schedule entry appearing or
// disappearing.
type ActivityEvent struct {
	ID         string
	RoomNumber int
	Action     scheduler.Action
	EntryID    string
	Status     scheduler.RoomStatus
	StartDate  string
	EndDate    string
	BookedBy   string
	CreatedAt  time.Time
}

// ActivityQuery narrows activity listings.
type ActivityQuery struct {
	Room  *int
	Limit int
}

// ScheduleResult is a room's schedule after a read or a successful mutation.
type ScheduleResult struct {
	Room    int
	Entries []scheduler.StatusEntry
	Version string
	Events  []ActivityEvent
}

// EntryInput is one entry of a full schedule replacement. An empty ID asks
// the service to assign one.
type EntryInput struct {
	ID           string
	Status       string
	StartDate    string
	EndDate      string
	BookedBy     string
	CheckoutTime string
}

// ReplaceScheduleParams wraps a full replacement of a room's entries.
type ReplaceScheduleParams struct {
	Room            int
	Entries         []EntryInput
	ExpectedVersion string
}

// SetDayStatusParams wraps a single-day status change.
type SetDayStatusParams struct {
	Room            int
	Date            string
	Status          string
	BookedBy        string
	CheckoutTime    string
	ExpectedVersion string
}

// AddRangeParams wraps a new multi-day entry.
type AddRangeParams struct {
	Room            int
	StartDate       string
	EndDate         string
	Status          string
	BookedBy        string
	ExpectedVersion string
}

// RemoveEntryParams identifies an entry to delete.
type RemoveEntryParams struct {
	Room            int
	EntryID         string
	ExpectedVersion string
}

// RecurringRuleParams wraps a recurring status rule applied between two
// dates inclusive.
type RecurringRuleParams struct {
	Room            int
	RRule           string
	Status          string
	BookedBy        string
	DurationDays    int
	From            string
	To              string
	ExpectedVersion string
}

// SkippedOccurrence reports a rule occurrence left out because of a
// conflict.
type SkippedOccurrence struct {
	StartDate             string
	EndDate               string
	ConflictingStatus     scheduler.RoomStatus
	ConflictingRangeLabel string
}

// RecurringResult is the outcome of ApplyRecurringRule.
type RecurringResult struct {
	ScheduleResult
	Skipped   []SkippedOccurrence
	Truncated bool
}

// TimelineQuery selects the window and rooms of a timeline. When Window is
// set it overrides Days and Offset.
type TimelineQuery struct {
	Days     int
	Offset   int
	Window   string
	Floor    *int
	Type     string
	Zone     string
	StatusOn *StatusFilter
}

// StatusFilter keeps rooms whose status at day Offset equals Status.
type StatusFilter struct {
	Offset int
	Status string
}

// TimelineRow is one room's resolved statuses across the window.
type TimelineRow struct {
	Room     Room
	Statuses []scheduler.RoomStatus
}

// DaySummary counts rooms per status on one day.
type DaySummary struct {
	Date   string
	Counts map[scheduler.RoomStatus]int
}

// TimelineView is a materialized timeline. Index i of every row and of Days
// corresponds to day offset StartDayOffset+i.
type TimelineView struct {
	Today          string
	StartDate      string
	StartDayOffset int
	Days           []string
	Rows           []TimelineRow
	Summary        []DaySummary
}
