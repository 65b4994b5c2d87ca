package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/scheduler"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, number int) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, number int) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomTypeLister exposes the configured room types.
type RoomTypeLister interface {
	ListRoomTypes(ctx context.Context) ([]RoomType, error)
}

// RoomService orchestrates validation and persistence for rooms.
type RoomService struct {
	rooms  RoomRepository
	types  RoomTypeLister
	logger *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, types RoomTypeLister) *RoomService {
	return NewRoomServiceWithLogger(rooms, types, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, types RoomTypeLister, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, types: types, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "room", input.Number)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room created")
	}()

	room, err = s.buildRoom(ctx, input)
	if err != nil {
		return
	}

	if s.rooms == nil {
		return
	}

	room, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	return
}

// GetRoom returns a single room.
func (s *RoomService) GetRoom(ctx context.Context, number int) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, ErrNotFound
	}
	room, err := s.rooms.GetRoom(ctx, number)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// UpdateRoom validates input and replaces an existing room. The room number
// in the path wins over the one in the input.
func (s *RoomService) UpdateRoom(ctx context.Context, number int, input RoomInput) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room", number)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if _, err = s.rooms.GetRoom(ctx, number); err != nil {
		err = mapRoomRepoError(err)
		return
	}

	input.Number = number
	room, err = s.buildRoom(ctx, input)
	if err != nil {
		return
	}

	room, err = s.rooms.UpdateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// DeleteRoom removes a room. Its schedule entries are kept so that they
// reappear if the room is recreated.
func (s *RoomService) DeleteRoom(ctx context.Context, number int) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room", number)

	if err := s.rooms.DeleteRoom(ctx, number); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

// ListRooms returns rooms matching filter ordered by number.
func (s *RoomService) ListRooms(ctx context.Context, filter RoomFilter) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	rooms = filterRooms(raw, filter)
	return
}

// RoomExists reports whether a room with the number is defined.
func (s *RoomService) RoomExists(ctx context.Context, number int) (bool, error) {
	if s == nil || s.rooms == nil {
		return false, nil
	}
	if _, err := s.rooms.GetRoom(ctx, number); err != nil {
		if errors.Is(mapRoomRepoError(err), ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *RoomService) buildRoom(ctx context.Context, input RoomInput) (Room, error) {
	vErr := validateRoomInput(input)

	room := Room{
		Number:   input.Number,
		Type:     strings.TrimSpace(input.Type),
		Status:   scheduler.StatusAvailable,
		Capacity: input.Capacity,
		Floor:    input.Floor,
		Zone:     strings.TrimSpace(input.Zone),
		Name:     strings.TrimSpace(input.Name),
	}
	if strings.TrimSpace(input.Status) != "" {
		status, err := scheduler.ParseStatus(input.Status)
		if err != nil {
			vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
		}
		room.Status = status
	}

	if room.Type != "" && s.types != nil {
		types, err := s.types.ListRoomTypes(ctx)
		if err != nil {
			return Room{}, err
		}
		if len(types) > 0 {
			match, ok := findRoomTypeByName(types, room.Type)
			if !ok {
				vErr.add("type", "type must name an existing room type")
			} else {
				room.Type = match.Name
				if room.Capacity == 0 && match.DefaultCapacity > 0 {
					room.Capacity = match.DefaultCapacity
				}
			}
		}
	}
	if room.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	if vErr.HasErrors() {
		return Room{}, vErr
	}
	return room, nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Number <= 0 {
		vErr.add("number", "room number must be positive")
	}
	if strings.TrimSpace(input.Type) == "" {
		vErr.add("type", "type is required")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func filterRooms(rooms []Room, filter RoomFilter) []Room {
	out := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if filter.Floor != nil && (room.Floor == nil || *room.Floor != *filter.Floor) {
			continue
		}
		if filter.Type != "" && !strings.EqualFold(room.Type, filter.Type) {
			continue
		}
		if filter.Zone != "" && !strings.EqualFold(room.Zone, filter.Zone) {
			continue
		}
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func findRoomTypeByName(types []RoomType, name string) (RoomType, bool) {
	for _, rt := range types {
		if strings.EqualFold(rt.Name, name) {
			return rt, true
		}
	}
	return RoomType{}, false
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
