package scheduler

import "sort"

// Registry maps room numbers to their entry lists in insertion order.
type Registry map[int][]StatusEntry

// RoomEntries returns a copy of a room's entries, empty when the room has none.
func (r Registry) RoomEntries(room int) []StatusEntry {
	return cloneEntries(r[room])
}

// SetRoomEntries returns a new registry with room's entries replaced. An
// empty list removes the room's key instead of storing an empty slice.
func (r Registry) SetRoomEntries(room int, entries []StatusEntry) Registry {
	out := r.Clone()
	if len(entries) == 0 {
		delete(out, room)
		return out
	}
	out[room] = cloneEntries(entries)
	return out
}

// Clone deep copies the registry.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for room, entries := range r {
		out[room] = cloneEntries(entries)
	}
	return out
}

// Rooms returns the room numbers holding at least one entry, ascending.
func (r Registry) Rooms() []int {
	rooms := make([]int, 0, len(r))
	for room, entries := range r {
		if len(entries) == 0 {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Ints(rooms)
	return rooms
}
