package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/room-availability/internal/calendar"
	"github.com/example/room-availability/internal/scheduler"
)

type registryStub struct {
	mu        sync.Mutex
	registry  scheduler.Registry
	loadErr   error
	updateErr error
	writes    int
}

func newRegistryStub(registry scheduler.Registry) *registryStub {
	if registry == nil {
		registry = scheduler.Registry{}
	}
	return &registryStub{registry: registry}
}

func (r *registryStub) LoadRegistry(ctx context.Context) (scheduler.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.registry.Clone(), nil
}

func (r *registryStub) UpdateRegistry(ctx context.Context, fn func(scheduler.Registry) (scheduler.Registry, error)) (scheduler.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(r.registry.Clone())
	if err != nil {
		return nil, err
	}
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.registry = next.Clone()
	r.writes++
	return next.Clone(), nil
}

func (r *registryStub) entries(room int) []scheduler.StatusEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.RoomEntries(room)
}

type activityStub struct {
	events []ActivityEvent
	calls  int
	err    error
}

func (a *activityStub) AppendActivity(ctx context.Context, events []ActivityEvent) error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, events...)
	return nil
}

type catalogStub map[int]bool

func (c catalogStub) RoomExists(ctx context.Context, number int) (bool, error) {
	return c[number], nil
}

var scheduleNow = time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC)

func newTestScheduleService(registry *registryStub, activity *activityStub) *ScheduleService {
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return NewScheduleServiceWithLogger(
		registry,
		activity,
		catalogStub{101: true, 102: true},
		time.UTC,
		idGen,
		func() time.Time { return scheduleNow },
		nil,
	)
}

func TestScheduleService_SetDayStatus(t *testing.T) {
	t.Run("adds a single day entry and records it", func(t *testing.T) {
		registry := newRegistryStub(nil)
		activity := &activityStub{}
		svc := newTestScheduleService(registry, activity)

		result, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 101, Date: "2025-06-02", Status: "cleaning"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(result.Entries) != 1 || result.Entries[0].ID != "id-1" {
			t.Fatalf("unexpected entries %+v", result.Entries)
		}
		if result.Version != scheduler.Version(result.Entries) {
			t.Fatalf("expected version of returned entries, got %q", result.Version)
		}
		if len(activity.events) != 1 {
			t.Fatalf("expected one activity event, got %d", len(activity.events))
		}
		event := activity.events[0]
		if event.Action != scheduler.ActionAdded || event.EntryID != "id-1" || !event.CreatedAt.Equal(scheduleNow) {
			t.Fatalf("unexpected event %+v", event)
		}
		if event.ID != "id-2" {
			t.Fatalf("expected event id from generator, got %q", event.ID)
		}
	})

	t.Run("replaces an exact single day entry", func(t *testing.T) {
		registry := newRegistryStub(scheduler.Registry{101: {
			{ID: "old", Status: scheduler.StatusMaintenance, StartDate: "2025-06-02", EndDate: "2025-06-02"},
		}})
		activity := &activityStub{}
		svc := newTestScheduleService(registry, activity)

		result, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 101, Date: "2025-06-02", Status: "occupied", BookedBy: " Ito ", CheckoutTime: "10:00"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(result.Entries) != 1 || result.Entries[0].BookedBy != "Ito" || result.Entries[0].CheckoutTime != "10:00" {
			t.Fatalf("unexpected entries %+v", result.Entries)
		}
		if len(result.Events) != 2 || result.Events[0].Action != scheduler.ActionAdded || result.Events[1].Action != scheduler.ActionRemoved {
			t.Fatalf("expected added then removed events, got %+v", result.Events)
		}
	})

	t.Run("reports a conflict with a covering range", func(t *testing.T) {
		registry := newRegistryStub(scheduler.Registry{101: {
			{ID: "stay", Status: scheduler.StatusOccupied, StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Sato"},
		}})
		activity := &activityStub{}
		svc := newTestScheduleService(registry, activity)

		_, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 101, Date: "2025-06-02", Status: "cleaning"})

		var conflict *scheduler.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.Conflict.ConflictingStatus != scheduler.StatusOccupied {
			t.Fatalf("expected occupied conflict, got %q", conflict.Conflict.ConflictingStatus)
		}
		if want := calendar.RangeLabel("2025-06-01", "2025-06-03"); conflict.Conflict.ConflictingRangeLabel != want {
			t.Fatalf("expected label %q, got %q", want, conflict.Conflict.ConflictingRangeLabel)
		}
		if registry.writes != 0 || activity.calls != 0 {
			t.Fatalf("expected no writes, got %d schedule writes and %d activity calls", registry.writes, activity.calls)
		}
		if ErrorKind(err) != "conflict" {
			t.Fatalf("expected conflict error kind, got %q", ErrorKind(err))
		}
	})

	t.Run("requires a booking name for occupied days", func(t *testing.T) {
		svc := newTestScheduleService(newRegistryStub(nil), &activityStub{})

		_, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 101, Date: "2025-06-02", Status: "occupied", BookedBy: "  "})

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["booked_by"] == "" {
			t.Fatalf("expected booked_by validation error, got %v", err)
		}
	})

	t.Run("validates input", func(t *testing.T) {
		svc := newTestScheduleService(newRegistryStub(nil), &activityStub{})

		_, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 0, Date: "2025-6-2", Status: "closed"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"room", "date", "status"} {
			if vErr.FieldErrors[field] == "" {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects unknown rooms", func(t *testing.T) {
		registry := newRegistryStub(nil)
		svc := newTestScheduleService(registry, &activityStub{})

		_, err := svc.SetDayStatus(context.Background(), SetDayStatusParams{Room: 999, Date: "2025-06-02", Status: "cleaning"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if registry.writes != 0 {
			t.Fatalf("expected no schedule writes")
		}
	})
}

func TestScheduleService_AddRange(t *testing.T) {
	registry := newRegistryStub(scheduler.Registry{101: {
		{ID: "a", Status: scheduler.StatusMaintenance, StartDate: "2025-06-10", EndDate: "2025-06-12"},
	}})
	svc := newTestScheduleService(registry, &activityStub{})

	result, err := svc.AddRange(context.Background(), AddRangeParams{Room: 101, StartDate: "2025-06-01", EndDate: "2025-06-03", Status: "occupied", BookedBy: "Sato"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(result.Entries) != 2 || result.Entries[0].StartDate != "2025-06-01" {
		t.Fatalf("expected normalized entries sorted by start date, got %+v", result.Entries)
	}

	_, err = svc.AddRange(context.Background(), AddRangeParams{Room: 101, StartDate: "2025-06-12", EndDate: "2025-06-14", Status: "cleaning"})
	var conflict *scheduler.ConflictError
	if !errors.As(err, &conflict) || conflict.Entry.ID != "a" {
		t.Fatalf("expected conflict with entry a, got %v", err)
	}

	_, err = svc.AddRange(context.Background(), AddRangeParams{Room: 101, StartDate: "2025-06-20", EndDate: "2025-06-19", Status: "cleaning"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["end_date"] == "" {
		t.Fatalf("expected end_date validation error, got %v", err)
	}
}

func TestScheduleService_ExpectedVersion(t *testing.T) {
	registry := newRegistryStub(scheduler.Registry{101: {
		{ID: "a", Status: scheduler.StatusCleaning, StartDate: "2025-06-10", EndDate: "2025-06-10"},
	}})
	svc := newTestScheduleService(registry, &activityStub{})
	ctx := context.Background()

	current, err := svc.GetRoomSchedule(ctx, 101)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	_, err = svc.RemoveEntry(ctx, RemoveEntryParams{Room: 101, EntryID: "a", ExpectedVersion: "stale"})
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if len(registry.entries(101)) != 1 {
		t.Fatalf("expected entries to be unchanged after mismatch")
	}

	result, err := svc.RemoveEntry(ctx, RemoveEntryParams{Room: 101, EntryID: "a", ExpectedVersion: current.Version})
	if err != nil {
		t.Fatalf("expected success with current version, got %v", err)
	}
	if len(result.Entries) != 0 || len(result.Events) != 1 || result.Events[0].Action != scheduler.ActionRemoved {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := registry.registry[101]; ok {
		t.Fatalf("expected emptied room to be dropped from the registry")
	}
}

func TestScheduleService_RemoveUnknownEntry(t *testing.T) {
	activity := &activityStub{}
	svc := newTestScheduleService(newRegistryStub(nil), activity)

	result, err := svc.RemoveEntry(context.Background(), RemoveEntryParams{Room: 101, EntryID: "missing"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(result.Events) != 0 || activity.calls != 0 {
		t.Fatalf("expected no activity for a no-op removal")
	}
}

func TestScheduleService_AuditFailure(t *testing.T) {
	registry := newRegistryStub(nil)
	activity := &activityStub{err: errors.New("activity log unavailable")}
	svc := newTestScheduleService(registry, activity)

	result, err := svc.AddRange(context.Background(), AddRangeParams{Room: 102, StartDate: "2025-06-01", EndDate: "2025-06-02", Status: "maintenance"})

	var auditErr *AuditError
	if !errors.As(err, &auditErr) {
		t.Fatalf("expected AuditError, got %v", err)
	}
	if len(auditErr.Result.Entries) != 1 || len(result.Entries) != 1 {
		t.Fatalf("expected saved entries in the error and the result")
	}
	if len(registry.entries(102)) != 1 {
		t.Fatalf("expected schedule to be saved despite audit failure")
	}
	if ErrorKind(err) != "audit_not_recorded" {
		t.Fatalf("unexpected error kind %q", ErrorKind(err))
	}
}

func TestScheduleService_ReplaceRoomSchedule(t *testing.T) {
	t.Run("stores entries in normalized order", func(t *testing.T) {
		registry := newRegistryStub(scheduler.Registry{101: {
			{ID: "keep", Status: scheduler.StatusCleaning, StartDate: "2025-06-05", EndDate: "2025-06-05"},
			{ID: "drop", Status: scheduler.StatusMaintenance, StartDate: "2025-06-07", EndDate: "2025-06-08"},
		}})
		svc := newTestScheduleService(registry, &activityStub{})

		result, err := svc.ReplaceRoomSchedule(context.Background(), ReplaceScheduleParams{Room: 101, Entries: []EntryInput{
			{ID: "keep", Status: "cleaning", StartDate: "2025-06-05", EndDate: "2025-06-05"},
			{Status: "occupied", StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Kato"},
		}})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(result.Entries) != 2 || result.Entries[0].ID != "id-1" || result.Entries[1].ID != "keep" {
			t.Fatalf("unexpected entries %+v", result.Entries)
		}
		if len(result.Events) != 2 {
			t.Fatalf("expected one added and one removed event, got %+v", result.Events)
		}
		if result.Events[0].EntryID != "id-1" || result.Events[1].EntryID != "drop" {
			t.Fatalf("unexpected events %+v", result.Events)
		}
	})

	t.Run("rejects overlapping entries", func(t *testing.T) {
		registry := newRegistryStub(nil)
		svc := newTestScheduleService(registry, &activityStub{})

		_, err := svc.ReplaceRoomSchedule(context.Background(), ReplaceScheduleParams{Room: 101, Entries: []EntryInput{
			{ID: "a", Status: "cleaning", StartDate: "2025-06-01", EndDate: "2025-06-03"},
			{ID: "b", Status: "maintenance", StartDate: "2025-06-03", EndDate: "2025-06-04"},
		}})

		var conflict *scheduler.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if registry.writes != 0 {
			t.Fatalf("expected nothing written")
		}
	})

	t.Run("reports field errors per entry", func(t *testing.T) {
		svc := newTestScheduleService(newRegistryStub(nil), &activityStub{})

		_, err := svc.ReplaceRoomSchedule(context.Background(), ReplaceScheduleParams{Room: 101, Entries: []EntryInput{
			{ID: "a", Status: "cleaning", StartDate: "2025-06-01", EndDate: "2025-06-01"},
			{ID: "b", Status: "bogus", StartDate: "2025-06-03", EndDate: "2025-06-02"},
		}})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["entries[1].status"] == "" || vErr.FieldErrors["entries[1].end_date"] == "" {
			t.Fatalf("unexpected field errors %v", vErr.FieldErrors)
		}
	})

	t.Run("reports duplicate ids", func(t *testing.T) {
		svc := newTestScheduleService(newRegistryStub(nil), &activityStub{})

		_, err := svc.ReplaceRoomSchedule(context.Background(), ReplaceScheduleParams{Room: 101, Entries: []EntryInput{
			{ID: "a", Status: "cleaning", StartDate: "2025-06-01", EndDate: "2025-06-01"},
			{ID: "a", Status: "cleaning", StartDate: "2025-06-05", EndDate: "2025-06-05"},
		}})

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["entries[1].id"] == "" {
			t.Fatalf("expected duplicate id error, got %v", err)
		}
	})
}

func TestScheduleService_ApplyRecurringRule(t *testing.T) {
	registry := newRegistryStub(scheduler.Registry{101: {
		{ID: "block", Status: scheduler.StatusMaintenance, StartDate: "2025-06-09", EndDate: "2025-06-09"},
	}})
	activity := &activityStub{}
	svc := newTestScheduleService(registry, activity)

	result, err := svc.ApplyRecurringRule(context.Background(), RecurringRuleParams{
		Room:         101,
		RRule:        "FREQ=WEEKLY;BYDAY=MO",
		Status:       "cleaning",
		DurationDays: 1,
		From:         "2025-06-02",
		To:           "2025-06-22",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(result.Skipped) != 1 || result.Skipped[0].StartDate != "2025-06-09" {
		t.Fatalf("expected the June 9 occurrence to be skipped, got %+v", result.Skipped)
	}
	if result.Skipped[0].ConflictingStatus != scheduler.StatusMaintenance {
		t.Fatalf("unexpected skipped conflict %+v", result.Skipped[0])
	}
	if len(result.Entries) != 3 {
		t.Fatalf("expected two added entries plus the existing one, got %+v", result.Entries)
	}
	if len(activity.events) != 2 {
		t.Fatalf("expected two activity events, got %d", len(activity.events))
	}
	if result.Truncated {
		t.Fatalf("did not expect truncation")
	}

	_, err = svc.ApplyRecurringRule(context.Background(), RecurringRuleParams{
		Room: 101, RRule: "FREQ=SOMETIMES", Status: "cleaning", DurationDays: 1, From: "2025-06-02", To: "2025-06-22",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["rrule"] == "" {
		t.Fatalf("expected rrule validation error, got %v", err)
	}
}

func TestScheduleService_GetRoomSchedule(t *testing.T) {
	registry := newRegistryStub(nil)
	svc := newTestScheduleService(registry, &activityStub{})

	result, err := svc.GetRoomSchedule(context.Background(), 555)
	if err != nil {
		t.Fatalf("expected reads of undefined rooms to succeed, got %v", err)
	}
	if len(result.Entries) != 0 || result.Version == "" {
		t.Fatalf("expected empty schedule with a version, got %+v", result)
	}

	registry.loadErr = errors.New("corrupt")
	if _, err := svc.GetRoomSchedule(context.Background(), 101); err == nil {
		t.Fatalf("expected load failure to propagate")
	}
}
