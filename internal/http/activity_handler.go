package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/room-availability/internal/application"
)

type activityService interface {
	ListActivity(ctx context.Context, query application.ActivityQuery) ([]application.ActivityEvent, error)
}

type ActivityHandler struct {
	service   activityService
	responder responder
}

func NewActivityHandler(service activityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{service: service, responder: newResponder(logger)}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var query application.ActivityQuery
	fields := map[string]string{}
	if raw := strings.TrimSpace(r.URL.Query().Get("room")); raw != "" {
		room, err := strconv.Atoi(raw)
		if err != nil || room <= 0 {
			fields["room"] = "room must be a positive integer"
		}
		query.Room = &room
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fields["limit"] = "limit must be a non-negative integer"
		}
		query.Limit = limit
	}
	if len(fields) > 0 {
		h.responder.handleServiceError(r.Context(), w, validationFailure(fields))
		return
	}

	events, err := h.service.ListActivity(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listActivityResponse{Events: toActivityDTOs(events)})
}

type listActivityResponse struct {
	Events []activityDTO `json:"events"`
}
