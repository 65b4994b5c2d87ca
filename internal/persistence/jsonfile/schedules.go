package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/example/room-availability/internal/persistence"
)

type loadedSchedules struct {
	schedules persistence.Schedules
	report    persistence.LoadReport
}

// ScheduleRepository stores the schedule registry in schedules.json.
type ScheduleRepository struct {
	resource *Resource[loadedSchedules]
}

var _ persistence.ScheduleRepository = (*ScheduleRepository)(nil)

// NewScheduleRepository binds the registry to store.
func NewScheduleRepository(store *Store) *ScheduleRepository {
	schema := newSchema()
	decode := func(data []byte) (loadedSchedules, error) {
		schedules, report, err := decodeSchedules(data, schema)
		if err != nil {
			return loadedSchedules{}, err
		}
		if report.DroppedEntries > 0 || len(report.DroppedRooms) > 0 || report.DroppedFields > 0 {
			store.logger.Warn("dropped malformed schedule records",
				slog.Int("dropped_entries", report.DroppedEntries),
				slog.Any("dropped_rooms", report.DroppedRooms),
				slog.Int("dropped_fields", report.DroppedFields),
			)
		}
		return loadedSchedules{schedules: schedules, report: report}, nil
	}
	encode := func(value loadedSchedules) ([]byte, error) {
		return encodeSchedules(value.schedules)
	}
	return &ScheduleRepository{resource: NewResource(store, SchedulesFile, decode, encode)}
}

// LoadSchedules returns every room's entries. A missing file is an empty
// registry.
func (r *ScheduleRepository) LoadSchedules(ctx context.Context) (persistence.Schedules, error) {
	schedules, _, err := r.Inspect(ctx)
	return schedules, err
}

// Inspect is LoadSchedules plus a report of what the load boundary dropped.
func (r *ScheduleRepository) Inspect(ctx context.Context) (persistence.Schedules, persistence.LoadReport, error) {
	loaded, err := r.resource.Read(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Schedules{}, persistence.LoadReport{}, nil
		}
		return nil, persistence.LoadReport{}, err
	}
	return cloneSchedules(loaded.schedules), loaded.report, nil
}

// SaveSchedules replaces the whole registry.
func (r *ScheduleRepository) SaveSchedules(ctx context.Context, schedules persistence.Schedules) error {
	return r.resource.Write(ctx, loadedSchedules{schedules: compactSchedules(schedules)})
}

// UpdateSchedules implements persistence.ScheduleRepository.
func (r *ScheduleRepository) UpdateSchedules(ctx context.Context, fn func(persistence.Schedules) (persistence.Schedules, error)) (persistence.Schedules, error) {
	updated, err := r.resource.Update(ctx, func(current loadedSchedules, _ bool) (loadedSchedules, error) {
		base := cloneSchedules(current.schedules)
		next, err := fn(base)
		if err != nil {
			return loadedSchedules{}, err
		}
		return loadedSchedules{schedules: compactSchedules(next)}, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSchedules(updated.schedules), nil
}

func encodeSchedules(schedules persistence.Schedules) ([]byte, error) {
	if schedules == nil {
		schedules = persistence.Schedules{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(schedules); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSchedules parses the registry file. Only a document that is not a
// JSON object fails; individual rooms and entries that do not match the
// schema are dropped and counted.
func decodeSchedules(data []byte, schema *validator.Validate) (persistence.Schedules, persistence.LoadReport, error) {
	var rooms map[string]json.RawMessage
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, persistence.LoadReport{}, err
	}

	var report persistence.LoadReport
	schedules := make(persistence.Schedules, len(rooms))
	for key, raw := range rooms {
		number, err := strconv.Atoi(key)
		if err != nil || number <= 0 {
			report.DroppedRooms = append(report.DroppedRooms, key)
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			report.DroppedRooms = append(report.DroppedRooms, key)
			continue
		}

		entries := make([]persistence.StatusEntry, 0, len(items))
		for _, item := range items {
			entry, droppedFields, ok := decodeEntry(item, schema)
			report.DroppedFields += droppedFields
			if !ok {
				report.DroppedEntries++
				continue
			}
			entries = append(entries, entry)
		}
		if len(entries) > 0 {
			schedules[number] = entries
		}
	}
	sort.Strings(report.DroppedRooms)
	return schedules, report, nil
}

func decodeEntry(raw json.RawMessage, schema *validator.Validate) (persistence.StatusEntry, int, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return persistence.StatusEntry{}, 0, false
	}

	var entry persistence.StatusEntry
	required := map[string]*string{
		"id":        &entry.ID,
		"status":    &entry.Status,
		"startDate": &entry.StartDate,
		"endDate":   &entry.EndDate,
	}
	for name, target := range required {
		value, ok := stringField(fields, name)
		if !ok {
			return persistence.StatusEntry{}, 0, false
		}
		*target = value
	}
	if err := schema.Struct(entry); err != nil {
		return persistence.StatusEntry{}, 0, false
	}
	if entry.StartDate > entry.EndDate {
		return persistence.StatusEntry{}, 0, false
	}

	dropped := 0
	if _, present := fields["bookedBy"]; present {
		if value, ok := stringField(fields, "bookedBy"); ok {
			entry.BookedBy = value
		} else {
			dropped++
		}
	}
	if _, present := fields["checkoutTime"]; present {
		value, ok := stringField(fields, "checkoutTime")
		if ok && schema.Var(value, "checkout") == nil {
			entry.CheckoutTime = value
		} else {
			dropped++
		}
	}
	return entry, dropped, true
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func compactSchedules(schedules persistence.Schedules) persistence.Schedules {
	out := make(persistence.Schedules, len(schedules))
	for room, entries := range schedules {
		if len(entries) == 0 {
			continue
		}
		out[room] = append([]persistence.StatusEntry(nil), entries...)
	}
	return out
}

func cloneSchedules(schedules persistence.Schedules) persistence.Schedules {
	out := make(persistence.Schedules, len(schedules))
	for room, entries := range schedules {
		out[room] = append([]persistence.StatusEntry(nil), entries...)
	}
	return out
}
