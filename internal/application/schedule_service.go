package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-availability/internal/calendar"
	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/recurrence"
	"github.com/example/room-availability/internal/scheduler"
)

// ScheduleRepository captures the persistence interactions needed by the service.
type ScheduleRepository interface {
	LoadRegistry(ctx context.Context) (scheduler.Registry, error)
	// UpdateRegistry applies fn to the stored registry and persists the
	// result as one read-modify-write cycle.
	UpdateRegistry(ctx context.Context, fn func(scheduler.Registry) (scheduler.Registry, error)) (scheduler.Registry, error)
}

// ActivityRecorder appends audit events.
type ActivityRecorder interface {
	AppendActivity(ctx context.Context, events []ActivityEvent) error
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, number int) (bool, error)
}

// ScheduleService orchestrates validation, conflict checks, persistence and
// audit logging for room schedules.
type ScheduleService struct {
	schedules   ScheduleRepository
	activity    ActivityRecorder
	rooms       RoomCatalog
	engine      *recurrence.Engine
	location    *time.Location
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(schedules ScheduleRepository, activity ActivityRecorder, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, activity, rooms, nil, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger wires dependencies for schedule operations with
// an explicit location for date keys and a logger.
func NewScheduleServiceWithLogger(schedules ScheduleRepository, activity ActivityRecorder, rooms RoomCatalog, loc *time.Location, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleService{
		schedules:   schedules,
		activity:    activity,
		rooms:       rooms,
		engine:      recurrence.NewEngine(loc),
		location:    loc,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// GetRoomSchedule returns a room's entries and their version. Rooms without
// entries yield an empty list.
func (s *ScheduleService) GetRoomSchedule(ctx context.Context, room int) (result ScheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	var registry scheduler.Registry
	registry, err = s.schedules.LoadRegistry(ctx)
	if err != nil {
		s.loggerWith(ctx, "GetRoomSchedule", "room", room).ErrorContext(ctx, "failed to load schedules", "error", err, "error_kind", ErrorKind(err))
		return
	}
	entries := registry.RoomEntries(room)
	result = ScheduleResult{Room: room, Entries: entries, Version: scheduler.Version(entries)}
	return
}

// ListSchedules returns the whole registry.
func (s *ScheduleService) ListSchedules(ctx context.Context) (registry scheduler.Registry, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil {
		return scheduler.Registry{}, nil
	}

	logger := s.loggerWith(ctx, "ListSchedules")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list schedules", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_count", len(registry)).DebugContext(ctx, "schedules listed")
	}()

	registry, err = s.schedules.LoadRegistry(ctx)
	return
}

// SetDayStatus replaces the single-day entry on a date, or adds one. An entry
// spanning several days that covers the date is reported as a conflict.
func (s *ScheduleService) SetDayStatus(ctx context.Context, params SetDayStatusParams) (result ScheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetDayStatus", "room", params.Room, "date", params.Date)
	defer s.logMutation(ctx, logger, "day status set", &result, &err)

	vErr := &ValidationError{}
	validateRoomNumber(params.Room, vErr)
	if !calendar.IsDateKey(params.Date) {
		vErr.add("date", "date must be YYYY-MM-DD")
	}
	status, statusErr := scheduler.ParseStatus(params.Status)
	if statusErr != nil {
		vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	draft := scheduler.Draft{Status: status, BookedBy: params.BookedBy, CheckoutTime: params.CheckoutTime}
	id := s.idGenerator()
	result, err = s.mutate(ctx, params.Room, params.ExpectedVersion, func(entries []scheduler.StatusEntry) ([]scheduler.StatusEntry, error) {
		return scheduler.UpsertSingleDay(entries, params.Date, draft, id)
	})
	return
}

// AddRange adds an entry spanning StartDate through EndDate.
func (s *ScheduleService) AddRange(ctx context.Context, params AddRangeParams) (result ScheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddRange", "room", params.Room, "start_date", params.StartDate, "end_date", params.EndDate)
	defer s.logMutation(ctx, logger, "range added", &result, &err)

	vErr := &ValidationError{}
	validateRoomNumber(params.Room, vErr)
	validateDateRange(params.StartDate, params.EndDate, vErr)
	status, statusErr := scheduler.ParseStatus(params.Status)
	if statusErr != nil {
		vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	draft := scheduler.Draft{Status: status, BookedBy: params.BookedBy}
	id := s.idGenerator()
	result, err = s.mutate(ctx, params.Room, params.ExpectedVersion, func(entries []scheduler.StatusEntry) ([]scheduler.StatusEntry, error) {
		return scheduler.AddRange(entries, params.StartDate, params.EndDate, draft, id)
	})
	return
}

// RemoveEntry deletes an entry. Removing an unknown id succeeds without
// changes.
func (s *ScheduleService) RemoveEntry(ctx context.Context, params RemoveEntryParams) (result ScheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RemoveEntry", "room", params.Room, "entry_id", params.EntryID)
	defer s.logMutation(ctx, logger, "entry removed", &result, &err)

	vErr := &ValidationError{}
	validateRoomNumber(params.Room, vErr)
	if strings.TrimSpace(params.EntryID) == "" {
		vErr.add("id", "entry id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	result, err = s.mutate(ctx, params.Room, params.ExpectedVersion, func(entries []scheduler.StatusEntry) ([]scheduler.StatusEntry, error) {
		return scheduler.RemoveEntry(entries, params.EntryID), nil
	})
	return
}

// ReplaceRoomSchedule swaps a room's entire entry list. Entries are validated
// as a whole, including pairwise overlap, and persisted in normalized order.
func (s *ScheduleService) ReplaceRoomSchedule(ctx context.Context, params ReplaceScheduleParams) (result ScheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ReplaceRoomSchedule", "room", params.Room, "entry_count", len(params.Entries))
	defer s.logMutation(ctx, logger, "schedule replaced", &result, &err)

	vErr := &ValidationError{}
	validateRoomNumber(params.Room, vErr)
	entries := make([]scheduler.StatusEntry, 0, len(params.Entries))
	for i, input := range params.Entries {
		entry, entryErr := s.entryFromInput(input)
		if entryErr != nil {
			for field, msg := range entryErr.FieldErrors {
				vErr.add(fmt.Sprintf("entries[%d].%s", i, field), msg)
			}
			continue
		}
		entries = append(entries, entry)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = scheduler.ValidateEntries(entries); err != nil {
		err = mapSchedulerError(err)
		return
	}

	result, err = s.mutate(ctx, params.Room, params.ExpectedVersion, func([]scheduler.StatusEntry) ([]scheduler.StatusEntry, error) {
		return entries, nil
	})
	return
}

// ApplyRecurringRule expands a recurring rule between two dates and adds every
// occurrence that does not collide with an existing entry.
func (s *ScheduleService) ApplyRecurringRule(ctx context.Context, params RecurringRuleParams) (result RecurringResult, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ApplyRecurringRule", "room", params.Room, "rrule", params.RRule)
	defer func() {
		s.logMutation(ctx, logger, "recurring rule applied", &result.ScheduleResult, &err)
		if err == nil && len(result.Skipped) > 0 {
			logger.InfoContext(ctx, "recurring occurrences skipped", "skipped_count", len(result.Skipped), "truncated", result.Truncated)
		}
	}()

	vErr := &ValidationError{}
	validateRoomNumber(params.Room, vErr)
	validateDateRange(params.From, params.To, vErr)
	status, statusErr := scheduler.ParseStatus(params.Status)
	if statusErr != nil {
		vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
	}
	if params.DurationDays < 1 {
		vErr.add("duration_days", "duration must be at least one day")
	}
	if strings.TrimSpace(params.RRule) == "" {
		vErr.add("rrule", "rule is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	from, _ := calendar.ParseDateKey(params.From, s.location)
	to, _ := calendar.ParseDateKey(params.To, s.location)
	rule := recurrence.Rule{RRule: params.RRule, Status: status, BookedBy: params.BookedBy, DurationDays: params.DurationDays}

	var applied recurrence.Result
	result.ScheduleResult, err = s.mutate(ctx, params.Room, params.ExpectedVersion, func(entries []scheduler.StatusEntry) ([]scheduler.StatusEntry, error) {
		var applyErr error
		applied, applyErr = s.engine.Apply(entries, rule, from, to, s.idGenerator)
		if applyErr != nil {
			return nil, applyErr
		}
		return applied.Entries, nil
	})

	var auditErr *AuditError
	if err != nil && !errors.As(err, &auditErr) {
		return
	}
	result.Truncated = applied.Truncated
	result.Skipped = make([]SkippedOccurrence, 0, len(applied.Skipped))
	for _, skipped := range applied.Skipped {
		result.Skipped = append(result.Skipped, SkippedOccurrence{
			StartDate:             skipped.Occurrence.StartDate,
			EndDate:               skipped.Occurrence.EndDate,
			ConflictingStatus:     skipped.Conflict.ConflictingStatus,
			ConflictingRangeLabel: skipped.Conflict.ConflictingRangeLabel,
		})
	}
	return
}

// mutate runs one read-modify-write cycle on a room's entries, then records
// the resulting audit events. The schedule write is authoritative: when only
// the activity write fails the saved result is returned inside an AuditError.
func (s *ScheduleService) mutate(ctx context.Context, room int, expectedVersion string, fn func([]scheduler.StatusEntry) ([]scheduler.StatusEntry, error)) (ScheduleResult, error) {
	if s.schedules == nil {
		return ScheduleResult{}, fmt.Errorf("schedule repository not configured")
	}
	if err := s.ensureRoomExists(ctx, room); err != nil {
		return ScheduleResult{}, err
	}

	var previous []scheduler.StatusEntry
	registry, err := s.schedules.UpdateRegistry(ctx, func(current scheduler.Registry) (scheduler.Registry, error) {
		previous = current.RoomEntries(room)
		if expectedVersion != "" && expectedVersion != scheduler.Version(previous) {
			return nil, ErrVersionMismatch
		}
		next, err := fn(previous)
		if err != nil {
			return nil, err
		}
		return current.SetRoomEntries(room, scheduler.Normalize(next)), nil
	})
	if err != nil {
		return ScheduleResult{}, mapSchedulerError(err)
	}

	entries := registry.RoomEntries(room)
	result := ScheduleResult{
		Room:    room,
		Entries: entries,
		Version: scheduler.Version(entries),
		Events:  s.activityEvents(scheduler.Diff(room, previous, entries, s.now())),
	}

	if len(result.Events) > 0 && s.activity != nil {
		if err := s.activity.AppendActivity(ctx, result.Events); err != nil {
			return result, &AuditError{Result: result, Err: err}
		}
	}
	return result, nil
}

func (s *ScheduleService) logMutation(ctx context.Context, logger *slog.Logger, message string, result *ScheduleResult, err *error) {
	if *err != nil {
		var auditErr *AuditError
		if errors.As(*err, &auditErr) {
			logger.WarnContext(ctx, "schedule saved but activity not recorded", "error", auditErr.Err, "error_kind", ErrorKind(*err))
			return
		}
		logger.ErrorContext(ctx, "schedule update failed", "error", *err, "error_kind", ErrorKind(*err))
		return
	}
	logger.With("entry_count", len(result.Entries), "event_count", len(result.Events), "version", result.Version).InfoContext(ctx, message)
}

func (s *ScheduleService) activityEvents(events []scheduler.Event) []ActivityEvent {
	out := make([]ActivityEvent, 0, len(events))
	for _, event := range events {
		out = append(out, ActivityEvent{
			ID:         s.idGenerator(),
			RoomNumber: event.RoomNumber,
			Action:     event.Action,
			EntryID:    event.EntryID,
			Status:     event.Status,
			StartDate:  event.StartDate,
			EndDate:    event.EndDate,
			BookedBy:   event.BookedBy,
			CreatedAt:  event.CreatedAt,
		})
	}
	return out
}

func (s *ScheduleService) ensureRoomExists(ctx context.Context, room int) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, room)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("room %d: %w", room, ErrNotFound)
	}
	return nil
}

func (s *ScheduleService) entryFromInput(input EntryInput) (scheduler.StatusEntry, *ValidationError) {
	vErr := &ValidationError{}
	status, err := scheduler.ParseStatus(input.Status)
	if err != nil {
		vErr.add("status", "status must be one of available, occupied, maintenance, cleaning")
	}
	validateDateRange(input.StartDate, input.EndDate, vErr)
	if vErr.HasErrors() {
		return scheduler.StatusEntry{}, vErr
	}

	entry := scheduler.StatusEntry{
		ID:        strings.TrimSpace(input.ID),
		Status:    status,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		BookedBy:  strings.TrimSpace(input.BookedBy),
	}
	if entry.ID == "" {
		entry.ID = s.idGenerator()
	}
	if status == scheduler.StatusOccupied && entry.SingleDay() {
		entry.CheckoutTime = strings.TrimSpace(input.CheckoutTime)
	}
	return entry, nil
}

func validateRoomNumber(room int, vErr *ValidationError) {
	if room <= 0 {
		vErr.add("room", "room number must be positive")
	}
}

func validateDateRange(start, end string, vErr *ValidationError) {
	startOK := calendar.IsDateKey(start)
	endOK := calendar.IsDateKey(end)
	if !startOK {
		vErr.add("start_date", "start date must be YYYY-MM-DD")
	}
	if !endOK {
		vErr.add("end_date", "end date must be YYYY-MM-DD")
	}
	if startOK && endOK && start > end {
		vErr.add("end_date", "end date must not be before start date")
	}
}

// mapSchedulerError turns core validation failures into field errors. Conflict
// errors pass through unchanged so callers can render the conflicting entry.
func mapSchedulerError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *scheduler.ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}

	prefix := ""
	var entryErr *scheduler.EntryError
	if errors.As(err, &entryErr) {
		prefix = fmt.Sprintf("entries[%d].", entryErr.Index)
	}

	switch {
	case errors.Is(err, scheduler.ErrBookingNameRequired):
		return fieldError(prefix+"booked_by", "booking name required")
	case errors.Is(err, scheduler.ErrInvalidRange):
		return fieldError(prefix+"end_date", "end date must not be before start date")
	case errors.Is(err, scheduler.ErrInvalidStatus):
		return fieldError(prefix+"status", "status must be one of available, occupied, maintenance, cleaning")
	case errors.Is(err, scheduler.ErrInvalidDate):
		return fieldError(prefix+"date", "date must be YYYY-MM-DD")
	case errors.Is(err, scheduler.ErrInvalidCheckoutTime):
		return fieldError(prefix+"checkout_time", "checkout time must be HH:MM")
	case errors.Is(err, scheduler.ErrMissingID):
		return fieldError(prefix+"id", "entry id is required")
	case errors.Is(err, scheduler.ErrDuplicateID):
		return fieldError(prefix+"id", "entry id must be unique")
	case errors.Is(err, recurrence.ErrInvalidRule):
		return fieldError("rrule", "rule could not be parsed")
	case errors.Is(err, recurrence.ErrInvalidDuration):
		return fieldError("duration_days", "duration must be at least one day")
	case errors.Is(err, recurrence.ErrInvalidWindow):
		return fieldError("to", "end date must not be before start date")
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	}
	return err
}
