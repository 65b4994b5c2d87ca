package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/scheduler"
)

var (
	errBadRequestBody    = errors.New("request body is not valid JSON")
	errInvalidRoomNumber = errors.New("room number must be a positive integer")
	errInvalidRoomTypeID = errors.New("room type id is required")
	errInvalidEntryID    = errors.New("entry id is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps service errors onto responses. Storage causes are
// logged and never echoed to the client.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var conflict *scheduler.ConflictError
	var vErr *application.ValidationError

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrVersionMismatch):
		r.writeJSON(ctx, w, http.StatusPreconditionFailed, errorResponse{
			ErrorCode: "VERSION_MISMATCH",
			Message:   "the schedule was changed by someone else; reload and try again",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a resource with the same identity already exists"})
	case errors.As(err, &conflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SCHEDULE_CONFLICT",
			Message:   conflictMessage(conflict.Conflict),
			Conflict: &conflictDTO{
				ConflictingStatus: string(conflict.Conflict.ConflictingStatus),
				ConflictingRange:  conflict.Conflict.ConflictingRangeLabel,
			},
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: statusMessage(http.StatusUnprocessableEntity),
			Errors:  vErr.FieldErrors,
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "storage or unexpected failure", "error", err, "corrupt", errors.Is(err, persistence.ErrCorrupt))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func conflictMessage(conflict scheduler.Conflict) string {
	return fmt.Sprintf("overlaps the %s entry %s", conflict.ConflictingStatus, conflict.ConflictingRangeLabel)
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is malformed"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusConflict:
		return "the request conflicts with the current state"
	case http.StatusPreconditionFailed:
		return "the resource version does not match"
	case http.StatusUnprocessableEntity:
		return "some fields are invalid"
	default:
		return "could not load or save data; try again later"
	}
}

// validationFailure builds a field level error for request parameters the
// services never see.
func validationFailure(fields map[string]string) error {
	return &application.ValidationError{FieldErrors: fields}
}

type conflictDTO struct {
	ConflictingStatus string `json:"conflicting_status"`
	ConflictingRange  string `json:"conflicting_range"`
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflict  *conflictDTO      `json:"conflict,omitempty"`
}
