package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RoomTypeRepository captures the persistence operations needed by the service.
type RoomTypeRepository interface {
	CreateRoomType(ctx context.Context, roomType RoomType) (RoomType, error)
	GetRoomType(ctx context.Context, id string) (RoomType, error)
	UpdateRoomType(ctx context.Context, roomType RoomType) (RoomType, error)
	DeleteRoomType(ctx context.Context, id string) error
	ListRoomTypes(ctx context.Context) ([]RoomType, error)
}

// RoomLister exposes the defined rooms.
type RoomLister interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomTypeService manages room categories.
type RoomTypeService struct {
	types       RoomTypeRepository
	rooms       RoomLister
	idGenerator func() string
	logger      *slog.Logger
}

// NewRoomTypeService constructs a room type service.
func NewRoomTypeService(types RoomTypeRepository, rooms RoomLister, idGenerator func() string, logger *slog.Logger) *RoomTypeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &RoomTypeService{types: types, rooms: rooms, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *RoomTypeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomTypeService", operation, attrs...)
}

// CreateRoomType validates and stores a new room type.
func (s *RoomTypeService) CreateRoomType(ctx context.Context, input RoomTypeInput) (roomType RoomType, err error) {
	if s == nil || s.types == nil {
		err = fmt.Errorf("room type repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoomType", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room type", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_type_id", roomType.ID).InfoContext(ctx, "room type created")
	}()

	if vErr := validateRoomTypeInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	roomType, err = s.types.CreateRoomType(ctx, RoomType{
		ID:              s.idGenerator(),
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		DefaultCapacity: input.DefaultCapacity,
	})
	err = mapRoomRepoError(err)
	return
}

// UpdateRoomType replaces a room type's attributes. Renaming a type that
// rooms still reference is rejected.
func (s *RoomTypeService) UpdateRoomType(ctx context.Context, id string, input RoomTypeInput) (roomType RoomType, err error) {
	if s == nil || s.types == nil {
		err = fmt.Errorf("room type repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoomType", "room_type_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room type", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room type updated")
	}()

	var existing RoomType
	existing, err = s.types.GetRoomType(ctx, id)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	if vErr := validateRoomTypeInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	name := strings.TrimSpace(input.Name)
	if !strings.EqualFold(name, existing.Name) {
		if err = s.ensureUnused(ctx, existing.Name); err != nil {
			return
		}
	}

	roomType, err = s.types.UpdateRoomType(ctx, RoomType{
		ID:              id,
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		DefaultCapacity: input.DefaultCapacity,
	})
	err = mapRoomRepoError(err)
	return
}

// DeleteRoomType removes a room type that no room uses.
func (s *RoomTypeService) DeleteRoomType(ctx context.Context, id string) (err error) {
	if s == nil || s.types == nil {
		return fmt.Errorf("room type repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoomType", "room_type_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room type", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room type deleted")
	}()

	var existing RoomType
	existing, err = s.types.GetRoomType(ctx, id)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	if err = s.ensureUnused(ctx, existing.Name); err != nil {
		return
	}
	err = mapRoomRepoError(s.types.DeleteRoomType(ctx, id))
	return
}

// ListRoomTypes returns every room type.
func (s *RoomTypeService) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	if s == nil || s.types == nil {
		return nil, nil
	}
	types, err := s.types.ListRoomTypes(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListRoomTypes").ErrorContext(ctx, "failed to list room types", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return types, nil
}

func (s *RoomTypeService) ensureUnused(ctx context.Context, name string) error {
	if s.rooms == nil {
		return nil
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		if strings.EqualFold(room.Type, name) {
			return fieldError("name", fmt.Sprintf("room type is used by room %d", room.Number))
		}
	}
	return nil
}

func validateRoomTypeInput(input RoomTypeInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.DefaultCapacity < 0 {
		vErr.add("default_capacity", "default capacity must not be negative")
	}
	return vErr
}
