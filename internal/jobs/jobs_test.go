package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/scheduler"
	"github.com/example/room-availability/internal/testfixtures"
)

type timelineStub struct {
	view    application.TimelineView
	err     error
	queries []application.TimelineQuery
}

func (s *timelineStub) Build(_ context.Context, query application.TimelineQuery) (application.TimelineView, error) {
	s.queries = append(s.queries, query)
	return s.view, s.err
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestRolloverLogsTodaysCounts(t *testing.T) {
	stub := &timelineStub{view: application.TimelineView{
		StartDate: "2025-06-01",
		Rows:      make([]application.TimelineRow, 3),
		Summary: []application.DaySummary{{
			Date: "2025-06-01",
			Counts: map[scheduler.RoomStatus]int{
				scheduler.StatusAvailable: 2,
				scheduler.StatusOccupied:  1,
			},
		}},
	}}
	logger, buf := bufferLogger()

	summary, err := NewRollover(stub, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", summary.Date)
	assert.Equal(t, 1, summary.Counts[scheduler.StatusOccupied])
	require.Len(t, stub.queries, 1)
	assert.Equal(t, 1, stub.queries[0].Days)
	assert.Equal(t, 0, stub.queries[0].Offset)

	out := buf.String()
	assert.Contains(t, out, "daily occupancy summary")
	assert.Contains(t, out, `"occupied":1`)
	assert.Contains(t, out, `"cleaning":0`)
	assert.Contains(t, out, `"rooms":3`)
}

func TestRolloverReportsBuildFailure(t *testing.T) {
	stub := &timelineStub{err: errors.New("disk gone")}
	logger, buf := bufferLogger()

	_, err := NewRollover(stub, logger).Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk gone")
	assert.Contains(t, buf.String(), `"error_kind":"unexpected"`)

	_, err = NewRollover(nil, logger).Run(context.Background())
	assert.Error(t, err)
}

func TestRolloverAgainstStore(t *testing.T) {
	ctx := context.Background()
	factory := testfixtures.NewServiceFactory()
	harness := testfixtures.NewStoreHarness(t, 0)
	services := factory.NewHarnessServices(harness)

	for _, number := range []int{101, 102} {
		_, err := services.Rooms.CreateRoom(ctx, testfixtures.NewRoomFixture(testfixtures.WithRoomNumber(number)).Input())
		require.NoError(t, err)
	}
	today := factory.Clock.DateKey()
	_, err := services.Schedules.SetDayStatus(ctx, application.SetDayStatusParams{
		Room: 101, Date: today, Status: "occupied", BookedBy: "Sato",
	})
	require.NoError(t, err)

	summary, err := NewRollover(services.Timeline, testfixtures.DiscardLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, today, summary.Date)
	assert.Equal(t, 1, summary.Counts[scheduler.StatusOccupied])
	assert.Equal(t, 1, summary.Counts[scheduler.StatusAvailable])
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, testfixtures.DiscardLogger())
	err := s.Add(context.Background(), "rollover", "every morning", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Next())
}

func TestSchedulerRunsRegisteredJob(t *testing.T) {
	logger, buf := bufferLogger()
	s := NewScheduler(time.UTC, logger)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	var seen any
	require.NoError(t, s.Add(ctx, "rollover", "5 0 * * *", func(jobCtx context.Context) error {
		seen = jobCtx.Value(ctxKey{})
		return errors.New("partial failure")
	}))

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()

	assert.Equal(t, "marker", seen)
	assert.Contains(t, buf.String(), "job failed")
	assert.Contains(t, buf.String(), "partial failure")
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := NewScheduler(time.UTC, testfixtures.DiscardLogger())
	require.NoError(t, s.Add(context.Background(), "noop", "@daily", func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)

	require.Eventually(t, func() bool {
		next := s.Next()
		return len(next) == 1 && !next[0].IsZero()
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
