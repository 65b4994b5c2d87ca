package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/room-availability/internal/application"
)

type roomService interface {
	CreateRoom(ctx context.Context, input application.RoomInput) (application.Room, error)
	GetRoom(ctx context.Context, number int) (application.Room, error)
	UpdateRoom(ctx context.Context, number int, input application.RoomInput) (application.Room, error)
	DeleteRoom(ctx context.Context, number int) error
	ListRooms(ctx context.Context, filter application.RoomFilter) ([]application.Room, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "room", req.Number)

	room, err := h.service.CreateRoom(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	number, ok := RoomNumberFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomNumber)
		return
	}

	room, err := h.service.GetRoom(r.Context(), number)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	number, ok := RoomNumberFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room number for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomNumber)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update")

	room, err := h.service.UpdateRoom(r.Context(), number, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	number, ok := RoomNumberFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomNumber)
		return
	}

	logger := h.log(r.Context(), "Delete")
	if err := h.service.DeleteRoom(r.Context(), number); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := parseRoomFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "List")
	rooms, err := h.service.ListRooms(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

func parseRoomFilter(query url.Values) (application.RoomFilter, error) {
	filter := application.RoomFilter{
		Type: strings.TrimSpace(query.Get("type")),
		Zone: strings.TrimSpace(query.Get("zone")),
	}
	if raw := strings.TrimSpace(query.Get("floor")); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			return application.RoomFilter{}, validationFailure(map[string]string{"floor": "floor must be an integer"})
		}
		filter.Floor = &floor
	}
	return filter, nil
}

type roomRequest struct {
	Number   int    `json:"number"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Capacity int    `json:"capacity"`
	Floor    *int   `json:"floor"`
	Zone     string `json:"zone"`
	Name     string `json:"name"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		Number:   r.Number,
		Type:     strings.TrimSpace(r.Type),
		Status:   strings.TrimSpace(r.Status),
		Capacity: r.Capacity,
		Floor:    r.Floor,
		Zone:     strings.TrimSpace(r.Zone),
		Name:     strings.TrimSpace(r.Name),
	}
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type roomDTO struct {
	Number   int    `json:"number"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Capacity int    `json:"capacity"`
	Floor    *int   `json:"floor,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Name     string `json:"name,omitempty"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		Number:   room.Number,
		Type:     room.Type,
		Status:   string(room.Status),
		Capacity: room.Capacity,
		Floor:    room.Floor,
		Zone:     room.Zone,
		Name:     room.Name,
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}
