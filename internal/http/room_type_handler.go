package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-availability/internal/application"
)

type roomTypeService interface {
	CreateRoomType(ctx context.Context, input application.RoomTypeInput) (application.RoomType, error)
	UpdateRoomType(ctx context.Context, id string, input application.RoomTypeInput) (application.RoomType, error)
	DeleteRoomType(ctx context.Context, id string) error
	ListRoomTypes(ctx context.Context) ([]application.RoomType, error)
}

type RoomTypeHandler struct {
	service   roomTypeService
	responder responder
	logger    *slog.Logger
}

func NewRoomTypeHandler(service roomTypeService, logger *slog.Logger) *RoomTypeHandler {
	base := defaultLogger(logger)
	return &RoomTypeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	types, err := h.service.ListRoomTypes(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]roomTypeDTO, 0, len(types))
	for _, rt := range types {
		out = append(out, toRoomTypeDTO(rt))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomTypesResponse{RoomTypes: out})
}

func (h *RoomTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req roomTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	roomType, err := h.service.CreateRoomType(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	handlerLogger(r.Context(), h.logger, "RoomTypeHandler", "Create", "room_type_id", roomType.ID).InfoContext(r.Context(), "room type created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomTypeResponse{RoomType: toRoomTypeDTO(roomType)})
}

func (h *RoomTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RoomTypeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomTypeID)
		return
	}

	var req roomTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	roomType, err := h.service.UpdateRoomType(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomTypeResponse{RoomType: toRoomTypeDTO(roomType)})
}

func (h *RoomTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RoomTypeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomTypeID)
		return
	}

	if err := h.service.DeleteRoomType(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roomTypeRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DefaultCapacity int    `json:"default_capacity"`
}

func (r roomTypeRequest) toInput() application.RoomTypeInput {
	return application.RoomTypeInput{
		Name:            r.Name,
		Description:     r.Description,
		DefaultCapacity: r.DefaultCapacity,
	}
}

type roomTypeDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DefaultCapacity int    `json:"default_capacity,omitempty"`
}

type roomTypeResponse struct {
	RoomType roomTypeDTO `json:"room_type"`
}

type listRoomTypesResponse struct {
	RoomTypes []roomTypeDTO `json:"room_types"`
}

func toRoomTypeDTO(rt application.RoomType) roomTypeDTO {
	return roomTypeDTO{ID: rt.ID, Name: rt.Name, Description: rt.Description, DefaultCapacity: rt.DefaultCapacity}
}
