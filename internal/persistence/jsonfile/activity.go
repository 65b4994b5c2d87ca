package jsonfile

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/example/room-availability/internal/persistence"
)

// ActivityLogRepository stores audit events in activityLog.json, oldest
// first.
type ActivityLogRepository struct {
	resource *Resource[[]persistence.ActivityLogEntry]
}

var _ persistence.ActivityLogRepository = (*ActivityLogRepository)(nil)

// NewActivityLogRepository binds the activity log to store.
func NewActivityLogRepository(store *Store) *ActivityLogRepository {
	decode := func(data []byte) ([]persistence.ActivityLogEntry, error) {
		var entries []persistence.ActivityLogEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	encode := func(entries []persistence.ActivityLogEntry) ([]byte, error) {
		if entries == nil {
			entries = []persistence.ActivityLogEntry{}
		}
		return encodeIndented(entries)
	}
	return &ActivityLogRepository{resource: NewResource(store, ActivityLogFile, decode, encode)}
}

// AppendActivity implements persistence.ActivityLogRepository.
func (r *ActivityLogRepository) AppendActivity(ctx context.Context, entries []persistence.ActivityLogEntry, limit int) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.resource.Update(ctx, func(current []persistence.ActivityLogEntry, _ bool) ([]persistence.ActivityLogEntry, error) {
		out := make([]persistence.ActivityLogEntry, 0, len(current)+len(entries))
		out = append(out, current...)
		out = append(out, entries...)
		if limit > 0 && len(out) > limit {
			out = out[len(out)-limit:]
		}
		return out, nil
	})
	return err
}

// ListActivity returns every stored event, oldest first.
func (r *ActivityLogRepository) ListActivity(ctx context.Context) ([]persistence.ActivityLogEntry, error) {
	entries, err := r.resource.Read(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return []persistence.ActivityLogEntry{}, nil
		}
		return nil, err
	}
	return append([]persistence.ActivityLogEntry{}, entries...), nil
}
