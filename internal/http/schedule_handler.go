package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/scheduler"
)

type scheduleService interface {
	GetRoomSchedule(ctx context.Context, room int) (application.ScheduleResult, error)
	ListSchedules(ctx context.Context) (scheduler.Registry, error)
	SetDayStatus(ctx context.Context, params application.SetDayStatusParams) (application.ScheduleResult, error)
	AddRange(ctx context.Context, params application.AddRangeParams) (application.ScheduleResult, error)
	RemoveEntry(ctx context.Context, params application.RemoveEntryParams) (application.ScheduleResult, error)
	ReplaceRoomSchedule(ctx context.Context, params application.ReplaceScheduleParams) (application.ScheduleResult, error)
	ApplyRecurringRule(ctx context.Context, params application.RecurringRuleParams) (application.RecurringResult, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	registry, err := h.service.ListSchedules(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make(map[string][]entryDTO, len(registry))
	for _, room := range registry.Rooms() {
		out[strconv.Itoa(room)] = toEntryDTOs(registry[room])
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{Schedules: out})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetRoomSchedule(r.Context(), room)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	setETag(w, result.Version)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(result, true))
}

func (h *ScheduleHandler) Replace(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}

	var req replaceScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	inputs := make([]application.EntryInput, 0, len(req.Entries))
	for _, entry := range req.Entries {
		inputs = append(inputs, entry.toInput())
	}

	result, err := h.service.ReplaceRoomSchedule(r.Context(), application.ReplaceScheduleParams{
		Room:            room,
		Entries:         inputs,
		ExpectedVersion: expectedVersion(r),
	})
	h.renderMutation(w, r, "Replace", result, err)
}

func (h *ScheduleHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}

	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.AddRange(r.Context(), application.AddRangeParams{
		Room:            room,
		StartDate:       strings.TrimSpace(req.StartDate),
		EndDate:         strings.TrimSpace(req.EndDate),
		Status:          req.Status,
		BookedBy:        req.BookedBy,
		ExpectedVersion: expectedVersion(r),
	})
	h.renderMutation(w, r, "AddEntry", result, err)
}

func (h *ScheduleHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	date, _ := DateFromContext(r.Context())

	var req dayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.SetDayStatus(r.Context(), application.SetDayStatusParams{
		Room:            room,
		Date:            date,
		Status:          req.Status,
		BookedBy:        req.BookedBy,
		CheckoutTime:    req.CheckoutTime,
		ExpectedVersion: expectedVersion(r),
	})
	h.renderMutation(w, r, "SetDay", result, err)
}

func (h *ScheduleHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	id, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	result, err := h.service.RemoveEntry(r.Context(), application.RemoveEntryParams{
		Room:            room,
		EntryID:         id,
		ExpectedVersion: expectedVersion(r),
	})
	h.renderMutation(w, r, "RemoveEntry", result, err)
}

func (h *ScheduleHandler) ApplyRecurring(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}

	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.DurationDays == 0 {
		req.DurationDays = 1
	}

	result, err := h.service.ApplyRecurringRule(r.Context(), application.RecurringRuleParams{
		Room:            room,
		RRule:           req.RRule,
		Status:          req.Status,
		BookedBy:        req.BookedBy,
		DurationDays:    req.DurationDays,
		From:            strings.TrimSpace(req.From),
		To:              strings.TrimSpace(req.To),
		ExpectedVersion: expectedVersion(r),
	})

	response, status, ok := h.mutationResponse(w, r, "ApplyRecurring", result.ScheduleResult, err)
	if !ok {
		return
	}
	skipped := make([]skippedDTO, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		skipped = append(skipped, skippedDTO{
			StartDate:         s.StartDate,
			EndDate:           s.EndDate,
			ConflictingStatus: string(s.ConflictingStatus),
			ConflictingRange:  s.ConflictingRangeLabel,
		})
	}
	h.responder.writeJSON(r.Context(), w, status, recurringResponse{
		scheduleResponse: response,
		Skipped:          skipped,
		Truncated:        result.Truncated,
	})
}

func (h *ScheduleHandler) room(w http.ResponseWriter, r *http.Request) (int, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return 0, false
	}
	room, ok := RoomNumberFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomNumber)
		return 0, false
	}
	return room, true
}

func (h *ScheduleHandler) renderMutation(w http.ResponseWriter, r *http.Request, operation string, result application.ScheduleResult, err error) {
	response, status, ok := h.mutationResponse(w, r, operation, result, err)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, status, response)
}

// mutationResponse renders failures itself and reports ok=false. A saved
// change whose audit write failed is still a success with audit_logged unset.
func (h *ScheduleHandler) mutationResponse(w http.ResponseWriter, r *http.Request, operation string, result application.ScheduleResult, err error) (scheduleResponse, int, bool) {
	logger := handlerLogger(r.Context(), h.logger, "ScheduleHandler", operation)
	if err != nil {
		var auditErr *application.AuditError
		if !errors.As(err, &auditErr) {
			logger.ErrorContext(r.Context(), "schedule mutation failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return scheduleResponse{}, 0, false
		}
		logger.WarnContext(r.Context(), "schedule saved without activity record", "error", auditErr.Err)
		response := toScheduleResponse(auditErr.Result, false)
		response.Warning = "the change was saved but could not be recorded in the activity log"
		setETag(w, auditErr.Result.Version)
		return response, http.StatusOK, true
	}

	setETag(w, result.Version)
	return toScheduleResponse(result, true), http.StatusOK, true
}

func setETag(w http.ResponseWriter, version string) {
	if version != "" {
		w.Header().Set("ETag", strconv.Quote(version))
	}
}

// expectedVersion reads If-Match. A wildcard or missing header disables the
// version check.
func expectedVersion(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get("If-Match"))
	value = strings.TrimPrefix(value, "W/")
	if value == "" || value == "*" {
		return ""
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		return unquoted
	}
	return value
}

type entryRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	BookedBy     string `json:"booked_by"`
	CheckoutTime string `json:"checkout_time"`
}

func (r entryRequest) toInput() application.EntryInput {
	return application.EntryInput{
		ID:           r.ID,
		Status:       r.Status,
		StartDate:    strings.TrimSpace(r.StartDate),
		EndDate:      strings.TrimSpace(r.EndDate),
		BookedBy:     r.BookedBy,
		CheckoutTime: r.CheckoutTime,
	}
}

type replaceScheduleRequest struct {
	Entries []entryRequest `json:"entries"`
}

type rangeRequest struct {
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	BookedBy  string `json:"booked_by"`
}

type dayRequest struct {
	Status       string `json:"status"`
	BookedBy     string `json:"booked_by"`
	CheckoutTime string `json:"checkout_time"`
}

type recurringRequest struct {
	RRule        string `json:"rrule"`
	Status       string `json:"status"`
	BookedBy     string `json:"booked_by"`
	DurationDays int    `json:"duration_days"`
	From         string `json:"from"`
	To           string `json:"to"`
}

type entryDTO struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	BookedBy     string `json:"booked_by,omitempty"`
	CheckoutTime string `json:"checkout_time,omitempty"`
}

func toEntryDTOs(entries []scheduler.StatusEntry) []entryDTO {
	out := make([]entryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryDTO{
			ID:           entry.ID,
			Status:       string(entry.Status),
			StartDate:    entry.StartDate,
			EndDate:      entry.EndDate,
			BookedBy:     entry.BookedBy,
			CheckoutTime: entry.CheckoutTime,
		})
	}
	return out
}

type activityDTO struct {
	ID        string `json:"id"`
	Room      int    `json:"room"`
	Action    string `json:"action"`
	EntryID   string `json:"entry_id"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	BookedBy  string `json:"booked_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toActivityDTOs(events []application.ActivityEvent) []activityDTO {
	out := make([]activityDTO, 0, len(events))
	for _, event := range events {
		out = append(out, activityDTO{
			ID:        event.ID,
			Room:      event.RoomNumber,
			Action:    string(event.Action),
			EntryID:   event.EntryID,
			Status:    string(event.Status),
			StartDate: event.StartDate,
			EndDate:   event.EndDate,
			BookedBy:  event.BookedBy,
			CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

type listSchedulesResponse struct {
	Schedules map[string][]entryDTO `json:"schedules"`
}

type scheduleResponse struct {
	Room        int           `json:"room"`
	Entries     []entryDTO    `json:"entries"`
	Version     string        `json:"version"`
	Events      []activityDTO `json:"events,omitempty"`
	AuditLogged bool          `json:"audit_logged"`
	Warning     string        `json:"warning,omitempty"`
}

func toScheduleResponse(result application.ScheduleResult, auditLogged bool) scheduleResponse {
	return scheduleResponse{
		Room:        result.Room,
		Entries:     toEntryDTOs(result.Entries),
		Version:     result.Version,
		Events:      toActivityDTOs(result.Events),
		AuditLogged: auditLogged,
	}
}

type skippedDTO struct {
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	ConflictingStatus string `json:"conflicting_status"`
	ConflictingRange  string `json:"conflicting_range"`
}

type recurringResponse struct {
	scheduleResponse
	Skipped   []skippedDTO `json:"skipped"`
	Truncated bool         `json:"truncated"`
}
