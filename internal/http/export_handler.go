package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/export"
)

type scheduleReader interface {
	GetRoomSchedule(ctx context.Context, room int) (application.ScheduleResult, error)
}

// ExportHandler serves calendar and spreadsheet downloads.
type ExportHandler struct {
	schedules scheduleReader
	timeline  timelineService
	location  *time.Location
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewExportHandler(schedules scheduleReader, timeline timelineService, loc *time.Location, now func() time.Time, logger *slog.Logger) *ExportHandler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &ExportHandler{schedules: schedules, timeline: timeline, location: loc, now: now, responder: newResponder(base), logger: base}
}

func (h *ExportHandler) RoomCalendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.schedules == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	room, ok := RoomNumberFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomNumber)
		return
	}

	result, err := h.schedules.GetRoomSchedule(r.Context(), room)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRoomCalendar(&buf, room, result.Entries, h.location, h.now()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="room-%d.ics"`, room))
	setETag(w, result.Version)
	h.write(r.Context(), w, buf.Bytes())
}

func (h *ExportHandler) TimelineWorkbook(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.timeline == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query, err := parseTimelineQuery(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	view, err := h.timeline.Build(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTimelineWorkbook(&buf, view); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="timeline-%s.xlsx"`, view.StartDate))
	h.write(r.Context(), w, buf.Bytes())
}

func (h *ExportHandler) write(ctx context.Context, w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		handlerLogger(ctx, h.logger, "ExportHandler", "write").ErrorContext(ctx, "failed to write export", "error", err)
	}
}
