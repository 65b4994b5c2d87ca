package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/example/room-availability/internal/persistence"
)

// RoomRepository stores rooms in rooms.json, ordered by number.
type RoomRepository struct {
	resource *Resource[[]persistence.Room]
}

var _ persistence.RoomRepository = (*RoomRepository)(nil)

// NewRoomRepository binds rooms to store.
func NewRoomRepository(store *Store) *RoomRepository {
	schema := newSchema()
	decode := func(data []byte) ([]persistence.Room, error) {
		return decodeList(store.logger, RoomsFile, data, schema, func(r persistence.Room) int { return r.Number })
	}
	encode := func(rooms []persistence.Room) ([]byte, error) {
		sorted := append([]persistence.Room{}, rooms...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
		return encodeIndented(sorted)
	}
	return &RoomRepository{resource: NewResource(store, RoomsFile, decode, encode)}
}

// CreateRoom stores a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	_, err := r.resource.Update(ctx, func(rooms []persistence.Room, _ bool) ([]persistence.Room, error) {
		for _, existing := range rooms {
			if existing.Number == room.Number {
				return nil, fmt.Errorf("room %d: %w", room.Number, persistence.ErrDuplicate)
			}
		}
		return append(cloneRooms(rooms), cloneRoom(room)), nil
	})
	return err
}

// UpdateRoom replaces an existing room.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	_, err := r.resource.Update(ctx, func(rooms []persistence.Room, _ bool) ([]persistence.Room, error) {
		out := cloneRooms(rooms)
		for i := range out {
			if out[i].Number == room.Number {
				out[i] = cloneRoom(room)
				return out, nil
			}
		}
		return nil, fmt.Errorf("room %d: %w", room.Number, persistence.ErrNotFound)
	})
	return err
}

// GetRoom returns the room with the given number.
func (r *RoomRepository) GetRoom(ctx context.Context, number int) (persistence.Room, error) {
	rooms, err := r.ListRooms(ctx)
	if err != nil {
		return persistence.Room{}, err
	}
	for _, room := range rooms {
		if room.Number == number {
			return room, nil
		}
	}
	return persistence.Room{}, fmt.Errorf("room %d: %w", number, persistence.ErrNotFound)
}

// ListRooms returns all rooms ordered by number.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rooms, err := r.resource.Read(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return []persistence.Room{}, nil
		}
		return nil, err
	}
	out := cloneRooms(rooms)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// DeleteRoom removes a room. Its schedule entries are left untouched.
func (r *RoomRepository) DeleteRoom(ctx context.Context, number int) error {
	_, err := r.resource.Update(ctx, func(rooms []persistence.Room, _ bool) ([]persistence.Room, error) {
		out := make([]persistence.Room, 0, len(rooms))
		found := false
		for _, room := range rooms {
			if room.Number == number {
				found = true
				continue
			}
			out = append(out, cloneRoom(room))
		}
		if !found {
			return nil, fmt.Errorf("room %d: %w", number, persistence.ErrNotFound)
		}
		return out, nil
	})
	return err
}

func cloneRoom(room persistence.Room) persistence.Room {
	if room.Floor != nil {
		floor := *room.Floor
		room.Floor = &floor
	}
	return room
}

func cloneRooms(rooms []persistence.Room) []persistence.Room {
	out := make([]persistence.Room, len(rooms))
	for i, room := range rooms {
		out[i] = cloneRoom(room)
	}
	return out
}

// decodeList parses a JSON array, dropping records that fail the schema or
// repeat an earlier key.
func decodeList[T any, K comparable](logger *slog.Logger, name string, data []byte, schema *validator.Validate, key func(T) K) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	seen := make(map[K]struct{}, len(raw))
	dropped := 0
	for _, item := range raw {
		var record T
		if err := json.Unmarshal(item, &record); err != nil {
			dropped++
			continue
		}
		if err := schema.Struct(record); err != nil {
			dropped++
			continue
		}
		k := key(record)
		if _, dup := seen[k]; dup {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, record)
	}
	if dropped > 0 {
		logger.Warn("dropped malformed records", slog.String("resource", name), slog.Int("dropped", dropped))
	}
	return out, nil
}

func encodeIndented(value any) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
