package application

import (
	"context"
	"fmt"
	"log/slog"
)

// ActivityRepository reads stored audit events, oldest first.
type ActivityRepository interface {
	ListActivity(ctx context.Context) ([]ActivityEvent, error)
}

// ActivityService exposes the audit trail.
type ActivityService struct {
	activity ActivityRepository
	logger   *slog.Logger
}

// NewActivityService constructs an activity service.
func NewActivityService(activity ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{activity: activity, logger: defaultLogger(logger)}
}

// ListActivity returns events newest first, optionally for one room and
// capped at query.Limit.
func (s *ActivityService) ListActivity(ctx context.Context, query ActivityQuery) (events []ActivityEvent, err error) {
	if s == nil {
		err = fmt.Errorf("ActivityService is nil")
		return
	}
	if s.activity == nil {
		return []ActivityEvent{}, nil
	}

	var stored []ActivityEvent
	stored, err = s.activity.ListActivity(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "ActivityService", "ListActivity").ErrorContext(ctx, "failed to list activity", "error", err, "error_kind", ErrorKind(err))
		return
	}

	events = make([]ActivityEvent, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if query.Room != nil && stored[i].RoomNumber != *query.Room {
			continue
		}
		events = append(events, stored[i])
		if query.Limit > 0 && len(events) == query.Limit {
			break
		}
	}
	return
}
