package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request scoped logger and tags it with the handler,
// the operation and any identifiers the router resolved from the path.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if room, ok := RoomNumberFromContext(ctx); ok {
		pairs = append(pairs, "room", room)
	}
	if id, ok := EntryIDFromContext(ctx); ok {
		pairs = append(pairs, "entry_id", id)
	}
	if date, ok := DateFromContext(ctx); ok {
		pairs = append(pairs, "date", date)
	}
	if id, ok := RoomTypeIDFromContext(ctx); ok {
		pairs = append(pairs, "room_type_id", id)
	}
	return logger.With(append(pairs, attrs...)...)
}
