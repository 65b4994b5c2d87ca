package persistence

import "context"

// ScheduleRepository persists the whole schedule registry as one resource.
type ScheduleRepository interface {
	LoadSchedules(ctx context.Context) (Schedules, error)
	SaveSchedules(ctx context.Context, schedules Schedules) error
	// UpdateSchedules runs fn against the current registry and persists the
	// result without letting another writer interleave.
	UpdateSchedules(ctx context.Context, fn func(Schedules) (Schedules, error)) (Schedules, error)
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, number int) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, number int) error
}

// RoomTypeRepository exposes CRUD operations for room types.
type RoomTypeRepository interface {
	CreateRoomType(ctx context.Context, roomType RoomType) error
	UpdateRoomType(ctx context.Context, roomType RoomType) error
	GetRoomType(ctx context.Context, id string) (RoomType, error)
	ListRoomTypes(ctx context.Context) ([]RoomType, error)
	DeleteRoomType(ctx context.Context, id string) error
}

// ActivityLogRepository stores audit events, oldest first.
type ActivityLogRepository interface {
	// AppendActivity adds entries and trims the log to the newest limit
	// records. A limit of zero or less keeps everything.
	AppendActivity(ctx context.Context, entries []ActivityLogEntry, limit int) error
	ListActivity(ctx context.Context) ([]ActivityLogEntry, error)
}
