package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/room-availability/internal/persistence"
)

// RoomTypeRepository stores room types in roomTypes.json.
type RoomTypeRepository struct {
	resource *Resource[[]persistence.RoomType]
}

var _ persistence.RoomTypeRepository = (*RoomTypeRepository)(nil)

// NewRoomTypeRepository binds room types to store.
func NewRoomTypeRepository(store *Store) *RoomTypeRepository {
	schema := newSchema()
	decode := func(data []byte) ([]persistence.RoomType, error) {
		return decodeList(store.logger, RoomTypesFile, data, schema, func(rt persistence.RoomType) string { return rt.ID })
	}
	encode := func(types []persistence.RoomType) ([]byte, error) {
		return encodeIndented(sortedRoomTypes(types))
	}
	return &RoomTypeRepository{resource: NewResource(store, RoomTypesFile, decode, encode)}
}

// CreateRoomType stores a new room type. Names are unique ignoring case.
func (r *RoomTypeRepository) CreateRoomType(ctx context.Context, roomType persistence.RoomType) error {
	_, err := r.resource.Update(ctx, func(types []persistence.RoomType, _ bool) ([]persistence.RoomType, error) {
		for _, existing := range types {
			if existing.ID == roomType.ID || strings.EqualFold(existing.Name, roomType.Name) {
				return nil, fmt.Errorf("room type %q: %w", roomType.Name, persistence.ErrDuplicate)
			}
		}
		return append(append([]persistence.RoomType{}, types...), roomType), nil
	})
	return err
}

// UpdateRoomType replaces an existing room type.
func (r *RoomTypeRepository) UpdateRoomType(ctx context.Context, roomType persistence.RoomType) error {
	_, err := r.resource.Update(ctx, func(types []persistence.RoomType, _ bool) ([]persistence.RoomType, error) {
		out := append([]persistence.RoomType{}, types...)
		index := -1
		for i, existing := range out {
			if existing.ID == roomType.ID {
				index = i
				continue
			}
			if strings.EqualFold(existing.Name, roomType.Name) {
				return nil, fmt.Errorf("room type %q: %w", roomType.Name, persistence.ErrDuplicate)
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("room type %s: %w", roomType.ID, persistence.ErrNotFound)
		}
		out[index] = roomType
		return out, nil
	})
	return err
}

// GetRoomType returns the room type with the given id.
func (r *RoomTypeRepository) GetRoomType(ctx context.Context, id string) (persistence.RoomType, error) {
	types, err := r.ListRoomTypes(ctx)
	if err != nil {
		return persistence.RoomType{}, err
	}
	for _, rt := range types {
		if rt.ID == id {
			return rt, nil
		}
	}
	return persistence.RoomType{}, fmt.Errorf("room type %s: %w", id, persistence.ErrNotFound)
}

// ListRoomTypes returns all room types ordered by name.
func (r *RoomTypeRepository) ListRoomTypes(ctx context.Context) ([]persistence.RoomType, error) {
	types, err := r.resource.Read(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return []persistence.RoomType{}, nil
		}
		return nil, err
	}
	return sortedRoomTypes(types), nil
}

// DeleteRoomType removes a room type.
func (r *RoomTypeRepository) DeleteRoomType(ctx context.Context, id string) error {
	_, err := r.resource.Update(ctx, func(types []persistence.RoomType, _ bool) ([]persistence.RoomType, error) {
		out := make([]persistence.RoomType, 0, len(types))
		for _, rt := range types {
			if rt.ID != id {
				out = append(out, rt)
			}
		}
		if len(out) == len(types) {
			return nil, fmt.Errorf("room type %s: %w", id, persistence.ErrNotFound)
		}
		return out, nil
	})
	return err
}

func sortedRoomTypes(types []persistence.RoomType) []persistence.RoomType {
	out := append([]persistence.RoomType{}, types...)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
