package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-availability/internal/calendar"
	"github.com/example/room-availability/internal/scheduler"
)

// RegistryLoader reads the schedule registry.
type RegistryLoader interface {
	LoadRegistry(ctx context.Context) (scheduler.Registry, error)
}

// TimelineOptions bounds timeline windows.
type TimelineOptions struct {
	DefaultDays int
	MaxDays     int
}

// TimelineService materializes room timelines. Nothing is memoized: every
// call reads the current rooms and registry.
type TimelineService struct {
	rooms     RoomLister
	schedules RegistryLoader
	location  *time.Location
	now       func() time.Time
	options   TimelineOptions
	logger    *slog.Logger
}

// NewTimelineService constructs a timeline service.
func NewTimelineService(rooms RoomLister, schedules RegistryLoader, loc *time.Location, now func() time.Time, options TimelineOptions, logger *slog.Logger) *TimelineService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if options.DefaultDays <= 0 {
		options.DefaultDays = 7
	}
	if options.MaxDays <= 0 {
		options.MaxDays = 62
	}
	return &TimelineService{
		rooms:     rooms,
		schedules: schedules,
		location:  loc,
		now:       now,
		options:   options,
		logger:    defaultLogger(logger),
	}
}

// Today returns local midnight of the current day.
func (s *TimelineService) Today() time.Time {
	return calendar.StartOfDay(s.now().In(s.location))
}

// Build resolves the timeline for query.
func (s *TimelineService) Build(ctx context.Context, query TimelineQuery) (view TimelineView, err error) {
	if s == nil {
		err = fmt.Errorf("TimelineService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "TimelineService", "Build", "window", query.Window, "days", query.Days, "offset", query.Offset)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build timeline", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_count", len(view.Rows), "start_date", view.StartDate).DebugContext(ctx, "timeline built")
	}()

	today := s.Today()
	offset, days, err := s.window(query, today)
	if err != nil {
		return
	}

	var filterStatus scheduler.RoomStatus
	if query.StatusOn != nil {
		vErr := &ValidationError{}
		filterStatus, err = scheduler.ParseStatus(query.StatusOn.Status)
		if err != nil {
			vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
		}
		if index := query.StatusOn.Offset - offset; index < 0 || index >= days {
			vErr.add("status_offset", "status day must fall inside the window")
		}
		if vErr.HasErrors() {
			err = vErr
			return
		}
	}

	var rooms []Room
	if s.rooms != nil {
		rooms, err = s.rooms.ListRooms(ctx)
		if err != nil {
			return
		}
	}
	rooms = filterRooms(rooms, RoomFilter{Floor: query.Floor, Type: query.Type, Zone: query.Zone})

	registry := scheduler.Registry{}
	if s.schedules != nil {
		registry, err = s.schedules.LoadRegistry(ctx)
		if err != nil {
			return
		}
	}

	timelineRooms := make([]scheduler.TimelineRoom, 0, len(rooms))
	for _, room := range rooms {
		timelineRooms = append(timelineRooms, scheduler.TimelineRoom{Number: room.Number, DefaultStatus: room.Status})
	}
	timeline := scheduler.BuildTimeline(timelineRooms, registry, days, offset, today)

	keys := scheduler.WindowKeys(days, offset, today)
	view = TimelineView{
		Today:          calendar.FormatDateKey(today),
		StartDate:      keys[0],
		StartDayOffset: offset,
		Days:           keys,
		Rows:           make([]TimelineRow, 0, len(rooms)),
	}
	for _, room := range rooms {
		if query.StatusOn != nil {
			status, ok := timeline.StatusAt(room.Number, query.StatusOn.Offset, offset)
			if !ok || status != filterStatus {
				continue
			}
		}
		view.Rows = append(view.Rows, TimelineRow{Room: room, Statuses: timeline[room.Number]})
	}
	view.Summary = summarize(keys, view.Rows)
	return
}

func (s *TimelineService) window(query TimelineQuery, today time.Time) (int, int, error) {
	if query.Window != "" {
		preset, err := calendar.ParseWindowPreset(query.Window)
		if err != nil {
			if errors.Is(err, calendar.ErrUnknownWindow) {
				return 0, 0, fieldError("window", "window must be week, month or two-months")
			}
			return 0, 0, err
		}
		return calendar.Window(preset, today)
	}

	days := query.Days
	if days == 0 {
		days = s.options.DefaultDays
	}
	if days < 1 || days > s.options.MaxDays {
		return 0, 0, fieldError("days", fmt.Sprintf("days must be between 1 and %d", s.options.MaxDays))
	}
	return query.Offset, days, nil
}

func summarize(keys []string, rows []TimelineRow) []DaySummary {
	summary := make([]DaySummary, len(keys))
	for i, key := range keys {
		counts := make(map[scheduler.RoomStatus]int, len(scheduler.Statuses))
		for _, status := range scheduler.Statuses {
			counts[status] = 0
		}
		for _, row := range rows {
			counts[row.Statuses[i]]++
		}
		summary[i] = DaySummary{Date: key, Counts: counts}
	}
	return summary
}
