package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/scheduler"
)

var (
	roomCounter  uint64
	entryCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room that can be materialised for
// application or persistence tests.
type RoomFixture struct {
	Number   int
	Type     string
	Status   scheduler.RoomStatus
	Capacity int
	Floor    *int
	Zone     string
	Name     string
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
// Generated numbers start at 101.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		Number:   100 + int(idx),
		Type:     "standard",
		Status:   scheduler.StatusAvailable,
		Capacity: 2,
		Name:     fmt.Sprintf("Room %03d", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomNumber overrides the generated room number.
func WithRoomNumber(number int) RoomOption {
	return func(f *RoomFixture) {
		f.Number = number
	}
}

// WithRoomType overrides the room type.
func WithRoomType(roomType string) RoomOption {
	return func(f *RoomFixture) {
		f.Type = roomType
	}
}

// WithRoomStatus overrides the default status.
func WithRoomStatus(status scheduler.RoomStatus) RoomOption {
	return func(f *RoomFixture) {
		f.Status = status
	}
}

// WithRoomCapacity overrides the capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomFloor sets the floor.
func WithRoomFloor(floor int) RoomOption {
	return func(f *RoomFixture) {
		f.Floor = &floor
	}
}

// WithRoomZone sets the zone.
func WithRoomZone(zone string) RoomOption {
	return func(f *RoomFixture) {
		f.Zone = zone
	}
}

// Application converts the fixture into an application room.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		Number:   f.Number,
		Type:     f.Type,
		Status:   f.Status,
		Capacity: f.Capacity,
		Floor:    copyInt(f.Floor),
		Zone:     f.Zone,
		Name:     f.Name,
	}
}

// Persistence converts the fixture into a stored room.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		Number:   f.Number,
		Type:     f.Type,
		Status:   string(f.Status),
		Capacity: f.Capacity,
		Floor:    copyInt(f.Floor),
		Zone:     f.Zone,
		Name:     f.Name,
	}
}

// Input converts the fixture into service input.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Number:   f.Number,
		Type:     f.Type,
		Status:   string(f.Status),
		Capacity: f.Capacity,
		Floor:    copyInt(f.Floor),
		Zone:     f.Zone,
		Name:     f.Name,
	}
}

// ----------------------------- Entry fixtures -----------------------------

// EntryOption configures a generated status entry.
type EntryOption func(*scheduler.StatusEntry)

// NewEntry returns a single-day cleaning entry on start unless overridden.
func NewEntry(start string, opts ...EntryOption) scheduler.StatusEntry {
	idx := atomic.AddUint64(&entryCounter, 1)
	entry := scheduler.StatusEntry{
		ID:        fmt.Sprintf("entry-%03d", idx),
		Status:    scheduler.StatusCleaning,
		StartDate: start,
		EndDate:   start,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	return entry
}

// WithEntryID overrides the generated id.
func WithEntryID(id string) EntryOption {
	return func(e *scheduler.StatusEntry) {
		e.ID = id
	}
}

// WithEntryEnd sets the inclusive end date.
func WithEntryEnd(end string) EntryOption {
	return func(e *scheduler.StatusEntry) {
		e.EndDate = end
	}
}

// WithEntryStatus overrides the status.
func WithEntryStatus(status scheduler.RoomStatus) EntryOption {
	return func(e *scheduler.StatusEntry) {
		e.Status = status
	}
}

// WithEntryBooking marks the entry occupied by name.
func WithEntryBooking(name string) EntryOption {
	return func(e *scheduler.StatusEntry) {
		e.Status = scheduler.StatusOccupied
		e.BookedBy = name
	}
}

func copyInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
