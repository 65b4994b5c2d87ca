package jsonfile

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-availability/internal/persistence"
)

func TestScheduleRepositoryMissingFileIsEmpty(t *testing.T) {
	store, _ := newMemStore(t)
	repo := NewScheduleRepository(store)

	schedules, err := repo.LoadSchedules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schedules)
	assert.NotNil(t, schedules)
}

func TestScheduleRepositoryCorruptFileIsFatal(t *testing.T) {
	store, fsys := newMemStore(t)
	require.NoError(t, afero.WriteFile(fsys, testDir+"/"+SchedulesFile, []byte(`[1,2`), 0o644))

	_, err := NewScheduleRepository(store).LoadSchedules(context.Background())
	assert.ErrorIs(t, err, persistence.ErrCorrupt)
}

func TestScheduleRepositoryDropsMalformedRecords(t *testing.T) {
	store, fsys := newMemStore(t)
	doc := `{
  "101": [
    {"id": "ok", "status": "occupied", "startDate": "2025-06-01", "endDate": "2025-06-03", "bookedBy": "Jane Doe"},
    {"status": "cleaning", "startDate": "2025-06-05", "endDate": "2025-06-05"},
    {"id": "bad-status", "status": "closed", "startDate": "2025-06-05", "endDate": "2025-06-05"},
    {"id": "bad-date", "status": "cleaning", "startDate": "2025-6-5", "endDate": "2025-06-05"},
    {"id": "inverted", "status": "cleaning", "startDate": "2025-06-09", "endDate": "2025-06-05"},
    {"id": 7, "status": "cleaning", "startDate": "2025-06-05", "endDate": "2025-06-05"},
    "garbage",
    {"id": "fields", "status": "occupied", "startDate": "2025-06-10", "endDate": "2025-06-10", "bookedBy": 42, "checkoutTime": "noon"}
  ],
  "abc": [],
  "-4": [],
  "102": {"not": "a list"},
  "103": []
}`
	require.NoError(t, afero.WriteFile(fsys, testDir+"/"+SchedulesFile, []byte(doc), 0o644))

	repo := NewScheduleRepository(store)
	schedules, report, err := repo.Inspect(context.Background())
	require.NoError(t, err)

	require.Len(t, schedules, 1)
	entries := schedules[101]
	require.Len(t, entries, 2)
	assert.Equal(t, persistence.StatusEntry{ID: "ok", Status: "occupied", StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Jane Doe"}, entries[0])
	assert.Equal(t, persistence.StatusEntry{ID: "fields", Status: "occupied", StartDate: "2025-06-10", EndDate: "2025-06-10"}, entries[1])

	assert.Equal(t, 6, report.DroppedEntries)
	assert.Equal(t, 2, report.DroppedFields)
	assert.Equal(t, []string{"-4", "102", "abc"}, report.DroppedRooms)
}

func TestScheduleRepositoryRoundTripIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	store, fsys := newMemStore(t)
	repo := NewScheduleRepository(store)

	original := persistence.Schedules{
		101: {
			{ID: "a", Status: "occupied", StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Jane Doe"},
			{ID: "b", Status: "occupied", StartDate: "2025-06-04", EndDate: "2025-06-04", BookedBy: "Kim", CheckoutTime: "10:00"},
		},
		20: {
			{ID: "c", Status: "maintenance", StartDate: "2025-07-01", EndDate: "2025-07-09"},
		},
		7: {},
	}
	require.NoError(t, repo.SaveSchedules(ctx, original))
	first, err := afero.ReadFile(fsys, testDir+"/"+SchedulesFile)
	require.NoError(t, err)
	assert.NotContains(t, string(first), `"7"`, "empty rooms are not persisted")

	// A fresh store has no cache, so this exercises the parse path.
	reloaded, err := NewScheduleRepository(NewStore(fsys, testDir)).LoadSchedules(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSchedules(ctx, reloaded))

	second, err := afero.ReadFile(fsys, testDir+"/"+SchedulesFile)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestScheduleRepositoryUpdateReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemStore(t)
	repo := NewScheduleRepository(store)

	updated, err := repo.UpdateSchedules(ctx, func(current persistence.Schedules) (persistence.Schedules, error) {
		assert.Empty(t, current)
		current[5] = []persistence.StatusEntry{{ID: "x", Status: "cleaning", StartDate: "2025-01-01", EndDate: "2025-01-01"}}
		return current, nil
	})
	require.NoError(t, err)
	updated[5][0].Status = "maintenance"

	loaded, err := repo.LoadSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cleaning", loaded[5][0].Status)

	loaded[5] = nil
	again, err := repo.LoadSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, again[5], 1)
}
