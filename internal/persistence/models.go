package persistence

import "time"

// StatusEntry is the stored form of a room schedule entry.
type StatusEntry struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=available occupied maintenance cleaning"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	BookedBy     string `json:"bookedBy,omitempty"`
	CheckoutTime string `json:"checkoutTime,omitempty"`
}

// Schedules maps a room number to its entries. It is stored as a single JSON
// object keyed by the room number rendered as a string.
type Schedules map[int][]StatusEntry

// Room represents a bookable room.
type Room struct {
	Number   int    `json:"number" validate:"gt=0"`
	Type     string `json:"type" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=available occupied maintenance cleaning"`
	Capacity int    `json:"capacity" validate:"gt=0"`
	Floor    *int   `json:"floor,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Name     string `json:"name,omitempty"`
}

// RoomType is a named category of rooms.
type RoomType struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description,omitempty"`
	DefaultCapacity int    `json:"defaultCapacity,omitempty" validate:"gte=0"`
}

// ActivityLogEntry records one schedule entry appearing or disappearing.
type ActivityLogEntry struct {
	ID         string    `json:"id"`
	RoomNumber int       `json:"roomNumber"`
	Action     string    `json:"action"`
	EntryID    string    `json:"entryId"`
	Status     string    `json:"status"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	BookedBy   string    `json:"bookedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LoadReport describes records dropped while loading schedules.
type LoadReport struct {
	DroppedEntries int
	DroppedRooms   []string
	DroppedFields  int
}
