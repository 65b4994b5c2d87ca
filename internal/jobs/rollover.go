// Package jobs runs periodic background work for the dashboard.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/scheduler"
)

type timelineBuilder interface {
	Build(ctx context.Context, query application.TimelineQuery) (application.TimelineView, error)
}

// Rollover logs the occupancy of the current day. It runs shortly after
// midnight so operators see the new day's numbers without opening the
// dashboard.
type Rollover struct {
	timeline timelineBuilder
	logger   *slog.Logger
}

func NewRollover(timeline timelineBuilder, logger *slog.Logger) *Rollover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rollover{timeline: timeline, logger: logger}
}

// Run builds a one-day timeline for today and logs its per-status counts.
func (r *Rollover) Run(ctx context.Context) (summary application.DaySummary, err error) {
	if r == nil || r.timeline == nil {
		return application.DaySummary{}, errors.New("rollover: timeline not configured")
	}

	logger := r.logger.With("job", "rollover")
	view, err := r.timeline.Build(ctx, application.TimelineQuery{Days: 1})
	if err != nil {
		logger.ErrorContext(ctx, "failed to build daily summary", "error", err, "error_kind", application.ErrorKind(err))
		return application.DaySummary{}, fmt.Errorf("rollover: %w", err)
	}
	if len(view.Summary) == 0 {
		return application.DaySummary{Date: view.StartDate, Counts: map[scheduler.RoomStatus]int{}}, nil
	}

	summary = view.Summary[0]
	attrs := []any{"date", summary.Date, "rooms", len(view.Rows)}
	for _, status := range scheduler.Statuses {
		attrs = append(attrs, string(status), summary.Counts[status])
	}
	logger.InfoContext(ctx, "daily occupancy summary", attrs...)
	return summary, nil
}
