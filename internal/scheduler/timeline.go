package scheduler

import (
	"time"

	"github.com/example/room-availability/internal/calendar"
)

// TimelineRoom is the part of a room the timeline needs.
type TimelineRoom struct {
	Number        int
	DefaultStatus RoomStatus
}

// Timeline maps a room number to one resolved status per day of a window.
// Index i always corresponds to day offset startDayOffset+i relative to the
// day the timeline was built for.
type Timeline map[int][]RoomStatus

// BuildTimeline resolves every room for each day in
// [today+startDayOffset, today+startDayOffset+windowDays). The result
// depends only on its arguments.
func BuildTimeline(rooms []TimelineRoom, registry Registry, windowDays, startDayOffset int, today time.Time) Timeline {
	keys := WindowKeys(windowDays, startDayOffset, today)

	timeline := make(Timeline, len(rooms))
	for _, room := range rooms {
		entries := registry[room.Number]
		statuses := make([]RoomStatus, len(keys))
		for i, key := range keys {
			statuses[i] = ResolveStatusKey(entries, key, room.DefaultStatus)
		}
		timeline[room.Number] = statuses
	}
	return timeline
}

// WindowKeys returns the date keys of a window in index order.
func WindowKeys(windowDays, startDayOffset int, today time.Time) []string {
	if windowDays <= 0 {
		return []string{}
	}
	start := calendar.AddDays(calendar.StartOfDay(today), startDayOffset)
	keys := make([]string, windowDays)
	for i := range keys {
		keys[i] = calendar.FormatDateKey(calendar.AddDays(start, i))
	}
	return keys
}

// StatusAt looks up a room's status at an absolute day offset, translating
// it into the window index by subtracting startDayOffset.
func (t Timeline) StatusAt(room, dayOffset, startDayOffset int) (RoomStatus, bool) {
	statuses, ok := t[room]
	if !ok {
		return "", false
	}
	index := dayOffset - startDayOffset
	if index < 0 || index >= len(statuses) {
		return "", false
	}
	return statuses[index], true
}
