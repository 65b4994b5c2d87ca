package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/room-availability/internal/application"
)

type timelineService interface {
	Build(ctx context.Context, query application.TimelineQuery) (application.TimelineView, error)
}

type TimelineHandler struct {
	service   timelineService
	responder responder
	logger    *slog.Logger
}

func NewTimelineHandler(service timelineService, logger *slog.Logger) *TimelineHandler {
	base := defaultLogger(logger)
	return &TimelineHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query, err := parseTimelineQuery(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	view, err := h.service.Build(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "TimelineHandler", "Get").With("room_count", len(view.Rows)).DebugContext(r.Context(), "timeline rendered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTimelineResponse(view))
}

// parseTimelineQuery reads days, offset, window, floor, type, zone, status
// and status_offset.
func parseTimelineQuery(values url.Values) (application.TimelineQuery, error) {
	fields := map[string]string{}
	intParam := func(name string) int {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = name + " must be an integer"
		}
		return n
	}

	query := application.TimelineQuery{
		Days:   intParam("days"),
		Offset: intParam("offset"),
		Window: strings.TrimSpace(values.Get("window")),
		Type:   strings.TrimSpace(values.Get("type")),
		Zone:   strings.TrimSpace(values.Get("zone")),
	}
	if strings.TrimSpace(values.Get("floor")) != "" {
		floor := intParam("floor")
		query.Floor = &floor
	}
	if status := strings.TrimSpace(values.Get("status")); status != "" {
		query.StatusOn = &application.StatusFilter{Status: status, Offset: intParam("status_offset")}
	}

	if len(fields) > 0 {
		return application.TimelineQuery{}, validationFailure(fields)
	}
	return query, nil
}

type timelineRoomDTO struct {
	Number   int      `json:"number"`
	Type     string   `json:"type"`
	Floor    *int     `json:"floor,omitempty"`
	Zone     string   `json:"zone,omitempty"`
	Name     string   `json:"name,omitempty"`
	Statuses []string `json:"statuses"`
}

type daySummaryDTO struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

type timelineResponse struct {
	Today          string            `json:"today"`
	StartDate      string            `json:"start_date"`
	StartDayOffset int               `json:"start_day_offset"`
	Days           []string          `json:"days"`
	Rooms          []timelineRoomDTO `json:"rooms"`
	Summary        []daySummaryDTO   `json:"summary"`
}

func toTimelineResponse(view application.TimelineView) timelineResponse {
	rooms := make([]timelineRoomDTO, 0, len(view.Rows))
	for _, row := range view.Rows {
		statuses := make([]string, 0, len(row.Statuses))
		for _, status := range row.Statuses {
			statuses = append(statuses, string(status))
		}
		rooms = append(rooms, timelineRoomDTO{
			Number:   row.Room.Number,
			Type:     row.Room.Type,
			Floor:    row.Room.Floor,
			Zone:     row.Room.Zone,
			Name:     row.Room.Name,
			Statuses: statuses,
		})
	}

	summary := make([]daySummaryDTO, 0, len(view.Summary))
	for _, day := range view.Summary {
		counts := make(map[string]int, len(day.Counts))
		for status, n := range day.Counts {
			counts[string(status)] = n
		}
		summary = append(summary, daySummaryDTO{Date: day.Date, Counts: counts})
	}

	return timelineResponse{
		Today:          view.Today,
		StartDate:      view.StartDate,
		StartDayOffset: view.StartDayOffset,
		Days:           append([]string{}, view.Days...),
		Rooms:          rooms,
		Summary:        summary,
	}
}
