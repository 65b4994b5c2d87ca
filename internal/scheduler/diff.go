package scheduler

import "time"

// Action labels an audit event.
type Action string

const (
	ActionAdded   Action = "schedule_added"
	ActionRemoved Action = "schedule_removed"
)

// Event is one audit record derived from a schedule update.
type Event struct {
	RoomNumber int
	Action     Action
	EntryID    string
	Status     RoomStatus
	StartDate  string
	EndDate    string
	BookedBy   string
	CreatedAt  time.Time
}

// Diff compares entry identities between two versions of a room's list.
// Added events follow next's order, then removed events follow previous's
// order. Entries present in both lists produce nothing even if their content
// changed.
func Diff(room int, previous, next []StatusEntry, now time.Time) []Event {
	before := idSet(previous)
	after := idSet(next)

	events := make([]Event, 0)
	for _, entry := range next {
		if _, ok := before[entry.ID]; ok {
			continue
		}
		events = append(events, newEvent(room, ActionAdded, entry, now))
	}
	for _, entry := range previous {
		if _, ok := after[entry.ID]; ok {
			continue
		}
		events = append(events, newEvent(room, ActionRemoved, entry, now))
	}
	return events
}

func idSet(entries []StatusEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		set[entry.ID] = struct{}{}
	}
	return set
}

func newEvent(room int, action Action, entry StatusEntry, now time.Time) Event {
	return Event{
		RoomNumber: room,
		Action:     action,
		EntryID:    entry.ID,
		Status:     entry.Status,
		StartDate:  entry.StartDate,
		EndDate:    entry.EndDate,
		BookedBy:   entry.BookedBy,
		CreatedAt:  now,
	}
}
