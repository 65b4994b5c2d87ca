package http

import (
	"context"
	"log/slog"

	"github.com/example/room-availability/internal/logging"
)

type contextKey string

const (
	roomNumberContextKey contextKey = "room_number"
	roomTypeIDContextKey contextKey = "room_type_id"
	entryIDContextKey    contextKey = "entry_id"
	dateContextKey       contextKey = "date"
)

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithRoomNumber injects the room number resolved from the request path.
func ContextWithRoomNumber(ctx context.Context, number int) context.Context {
	return context.WithValue(ctx, roomNumberContextKey, number)
}

// RoomNumberFromContext extracts a room number previously associated with the context.
func RoomNumberFromContext(ctx context.Context) (int, bool) {
	number, ok := ctx.Value(roomNumberContextKey).(int)
	return number, ok
}

// ContextWithRoomTypeID injects the room type identifier resolved from the request path.
func ContextWithRoomTypeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, roomTypeIDContextKey, id)
}

// RoomTypeIDFromContext extracts a room type identifier.
func RoomTypeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomTypeIDContextKey).(string)
	return id, ok
}

// ContextWithEntryID injects a schedule entry identifier.
func ContextWithEntryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, entryIDContextKey, id)
}

// EntryIDFromContext extracts a schedule entry identifier.
func EntryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(entryIDContextKey).(string)
	return id, ok
}

// ContextWithDate injects a date key taken from the request path.
func ContextWithDate(ctx context.Context, date string) context.Context {
	return context.WithValue(ctx, dateContextKey, date)
}

// DateFromContext extracts a date key.
func DateFromContext(ctx context.Context) (string, bool) {
	date, ok := ctx.Value(dateContextKey).(string)
	return date, ok
}
