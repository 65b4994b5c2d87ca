// Package adapters binds the persistence repositories to the interfaces the
// application services depend on, converting between stored records and
// domain values.
package adapters

import (
	"context"
	"errors"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/scheduler"
)

// ScheduleRegistry adapts a persistence.ScheduleRepository.
type ScheduleRegistry struct {
	repo persistence.ScheduleRepository
}

// NewScheduleRegistry wraps repo.
func NewScheduleRegistry(repo persistence.ScheduleRepository) *ScheduleRegistry {
	return &ScheduleRegistry{repo: repo}
}

// LoadRegistry implements application.RegistryLoader.
func (a *ScheduleRegistry) LoadRegistry(ctx context.Context) (scheduler.Registry, error) {
	stored, err := a.repo.LoadSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return ToRegistry(stored), nil
}

// UpdateRegistry implements application.ScheduleRepository.
func (a *ScheduleRegistry) UpdateRegistry(ctx context.Context, fn func(scheduler.Registry) (scheduler.Registry, error)) (scheduler.Registry, error) {
	stored, err := a.repo.UpdateSchedules(ctx, func(current persistence.Schedules) (persistence.Schedules, error) {
		next, err := fn(ToRegistry(current))
		if err != nil {
			return nil, err
		}
		return FromRegistry(next), nil
	})
	if err != nil {
		return nil, err
	}
	return ToRegistry(stored), nil
}

// ToRegistry converts stored schedules into the scheduling core's registry.
func ToRegistry(stored persistence.Schedules) scheduler.Registry {
	registry := make(scheduler.Registry, len(stored))
	for room, entries := range stored {
		if len(entries) == 0 {
			continue
		}
		converted := make([]scheduler.StatusEntry, 0, len(entries))
		for _, entry := range entries {
			converted = append(converted, scheduler.StatusEntry{
				ID:           entry.ID,
				Status:       scheduler.RoomStatus(entry.Status),
				StartDate:    entry.StartDate,
				EndDate:      entry.EndDate,
				BookedBy:     entry.BookedBy,
				CheckoutTime: entry.CheckoutTime,
			})
		}
		registry[room] = converted
	}
	return registry
}

// FromRegistry converts a registry into its stored form.
func FromRegistry(registry scheduler.Registry) persistence.Schedules {
	stored := make(persistence.Schedules, len(registry))
	for room, entries := range registry {
		if len(entries) == 0 {
			continue
		}
		converted := make([]persistence.StatusEntry, 0, len(entries))
		for _, entry := range entries {
			converted = append(converted, persistence.StatusEntry{
				ID:           entry.ID,
				Status:       string(entry.Status),
				StartDate:    entry.StartDate,
				EndDate:      entry.EndDate,
				BookedBy:     entry.BookedBy,
				CheckoutTime: entry.CheckoutTime,
			})
		}
		stored[room] = converted
	}
	return stored
}

// Rooms adapts a persistence.RoomRepository.
type Rooms struct {
	repo persistence.RoomRepository
}

// NewRooms wraps repo.
func NewRooms(repo persistence.RoomRepository) *Rooms {
	return &Rooms{repo: repo}
}

// CreateRoom implements application.RoomRepository.
func (a *Rooms) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.Number)
}

// GetRoom implements application.RoomRepository.
func (a *Rooms) GetRoom(ctx context.Context, number int) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, number)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

// UpdateRoom implements application.RoomRepository.
func (a *Rooms) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.Number)
}

// DeleteRoom implements application.RoomRepository.
func (a *Rooms) DeleteRoom(ctx context.Context, number int) error {
	return a.repo.DeleteRoom(ctx, number)
}

// ListRooms implements application.RoomRepository.
func (a *Rooms) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

// RoomExists implements application.RoomCatalog.
func (a *Rooms) RoomExists(ctx context.Context, number int) (bool, error) {
	if _, err := a.repo.GetRoom(ctx, number); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		Number:   room.Number,
		Type:     room.Type,
		Status:   string(room.Status),
		Capacity: room.Capacity,
		Floor:    copyInt(room.Floor),
		Zone:     room.Zone,
		Name:     room.Name,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		Number:   room.Number,
		Type:     room.Type,
		Status:   scheduler.RoomStatus(room.Status),
		Capacity: room.Capacity,
		Floor:    copyInt(room.Floor),
		Zone:     room.Zone,
		Name:     room.Name,
	}
}

func copyInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// RoomTypes adapts a persistence.RoomTypeRepository.
type RoomTypes struct {
	repo persistence.RoomTypeRepository
}

// NewRoomTypes wraps repo.
func NewRoomTypes(repo persistence.RoomTypeRepository) *RoomTypes {
	return &RoomTypes{repo: repo}
}

// CreateRoomType implements application.RoomTypeRepository.
func (a *RoomTypes) CreateRoomType(ctx context.Context, roomType application.RoomType) (application.RoomType, error) {
	if err := a.repo.CreateRoomType(ctx, persistence.RoomType(roomType)); err != nil {
		return application.RoomType{}, err
	}
	return roomType, nil
}

// GetRoomType implements application.RoomTypeRepository.
func (a *RoomTypes) GetRoomType(ctx context.Context, id string) (application.RoomType, error) {
	stored, err := a.repo.GetRoomType(ctx, id)
	if err != nil {
		return application.RoomType{}, err
	}
	return application.RoomType(stored), nil
}

// UpdateRoomType implements application.RoomTypeRepository.
func (a *RoomTypes) UpdateRoomType(ctx context.Context, roomType application.RoomType) (application.RoomType, error) {
	if err := a.repo.UpdateRoomType(ctx, persistence.RoomType(roomType)); err != nil {
		return application.RoomType{}, err
	}
	return roomType, nil
}

// DeleteRoomType implements application.RoomTypeRepository.
func (a *RoomTypes) DeleteRoomType(ctx context.Context, id string) error {
	return a.repo.DeleteRoomType(ctx, id)
}

// ListRoomTypes implements application.RoomTypeRepository.
func (a *RoomTypes) ListRoomTypes(ctx context.Context) ([]application.RoomType, error) {
	stored, err := a.repo.ListRoomTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]application.RoomType, 0, len(stored))
	for _, rt := range stored {
		out = append(out, application.RoomType(rt))
	}
	return out, nil
}

// Activity adapts a persistence.ActivityLogRepository and applies the
// retention limit on every append.
type Activity struct {
	repo  persistence.ActivityLogRepository
	limit int
}

// NewActivity wraps repo. A limit of zero or less keeps every event.
func NewActivity(repo persistence.ActivityLogRepository, limit int) *Activity {
	return &Activity{repo: repo, limit: limit}
}

// AppendActivity implements application.ActivityRecorder.
func (a *Activity) AppendActivity(ctx context.Context, events []application.ActivityEvent) error {
	records := make([]persistence.ActivityLogEntry, 0, len(events))
	for _, event := range events {
		records = append(records, persistence.ActivityLogEntry{
			ID:         event.ID,
			RoomNumber: event.RoomNumber,
			Action:     string(event.Action),
			EntryID:    event.EntryID,
			Status:     string(event.Status),
			StartDate:  event.StartDate,
			EndDate:    event.EndDate,
			BookedBy:   event.BookedBy,
			CreatedAt:  event.CreatedAt,
		})
	}
	return a.repo.AppendActivity(ctx, records, a.limit)
}

// ListActivity implements application.ActivityRepository.
func (a *Activity) ListActivity(ctx context.Context) ([]application.ActivityEvent, error) {
	records, err := a.repo.ListActivity(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]application.ActivityEvent, 0, len(records))
	for _, record := range records {
		events = append(events, application.ActivityEvent{
			ID:         record.ID,
			RoomNumber: record.RoomNumber,
			Action:     scheduler.Action(record.Action),
			EntryID:    record.EntryID,
			Status:     scheduler.RoomStatus(record.Status),
			StartDate:  record.StartDate,
			EndDate:    record.EndDate,
			BookedBy:   record.BookedBy,
			CreatedAt:  record.CreatedAt,
		})
	}
	return events, nil
}
