package scheduler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-availability/internal/calendar"
)

func day(t *testing.T, key string) time.Time {
	t.Helper()
	parsed, err := calendar.ParseDateKey(key, time.UTC)
	require.NoError(t, err)
	return parsed
}

func janeDoeRange(t *testing.T) []StatusEntry {
	t.Helper()
	entries, err := AddRange(nil, "2025-06-01", "2025-06-03", Draft{Status: StatusOccupied, BookedBy: "Jane Doe"}, "e1")
	require.NoError(t, err)
	return entries
}

func TestResolveStatusWithoutEntriesFallsBackToDefault(t *testing.T) {
	today := day(t, "2025-06-10")
	assert.Equal(t, StatusAvailable, ResolveStatus(nil, today, StatusAvailable))

	_, ok := ResolveEntry(nil, today)
	assert.False(t, ok)
}

func TestAddRangeThenResolve(t *testing.T) {
	entries := janeDoeRange(t)

	assert.Equal(t, StatusOccupied, ResolveStatus(entries, day(t, "2025-06-02"), StatusAvailable))
	entry, ok := ResolveEntry(entries, day(t, "2025-06-02"))
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", entry.BookedBy)

	assert.Equal(t, StatusAvailable, ResolveStatus(entries, day(t, "2025-06-04"), StatusAvailable))
}

func TestAddRangeRejectsOverlap(t *testing.T) {
	entries := janeDoeRange(t)

	_, err := AddRange(entries, "2025-06-03", "2025-06-05", Draft{Status: StatusMaintenance}, "e2")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "e1", conflict.Entry.ID)
	assert.Equal(t, StatusOccupied, conflict.Conflict.ConflictingStatus)
	assert.Equal(t, "Jun 1–Jun 3", conflict.Conflict.ConflictingRangeLabel)
	assert.Contains(t, err.Error(), "occupied")
}

func TestAddRangeValidation(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		draft Draft
		id    string
		want  error
	}{
		{name: "inverted", start: "2025-06-05", end: "2025-06-01", draft: Draft{Status: StatusCleaning}, id: "x", want: ErrInvalidRange},
		{name: "bad start", start: "2025-6-1", end: "2025-06-01", draft: Draft{Status: StatusCleaning}, id: "x", want: ErrInvalidDate},
		{name: "missing name", start: "2025-06-01", end: "2025-06-02", draft: Draft{Status: StatusOccupied, BookedBy: "   "}, id: "x", want: ErrBookingNameRequired},
		{name: "bad status", start: "2025-06-01", end: "2025-06-02", draft: Draft{Status: "closed"}, id: "x", want: ErrInvalidStatus},
		{name: "missing id", start: "2025-06-01", end: "2025-06-02", draft: Draft{Status: StatusCleaning}, want: ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddRange(nil, tt.start, tt.end, tt.draft, tt.id)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpsertSingleDayInsideLongerEntry(t *testing.T) {
	entries := janeDoeRange(t)

	_, err := UpsertSingleDay(entries, "2025-06-02", Draft{Status: StatusCleaning}, "e2")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "e1", conflict.Entry.ID)

	_, err = UpsertSingleDay(entries, "2025-06-02", Draft{Status: StatusOccupied, BookedBy: ""}, "e3")
	assert.ErrorIs(t, err, ErrBookingNameRequired)
}

func TestUpsertSingleDayReplacesExactDay(t *testing.T) {
	entries, err := UpsertSingleDay(nil, "2025-06-02", Draft{Status: StatusCleaning}, "a")
	require.NoError(t, err)
	entries, err = AddRange(entries, "2025-06-04", "2025-06-06", Draft{Status: StatusMaintenance}, "b")
	require.NoError(t, err)

	next, err := UpsertSingleDay(entries, "2025-06-02", Draft{Status: StatusOccupied, BookedBy: " Ann ", CheckoutTime: "11:00"}, "c")
	require.NoError(t, err)

	require.Len(t, next, 2)
	assert.Equal(t, "b", next[0].ID)
	assert.Equal(t, StatusEntry{ID: "c", Status: StatusOccupied, StartDate: "2025-06-02", EndDate: "2025-06-02", BookedBy: "Ann", CheckoutTime: "11:00"}, next[1])
	// Input list is untouched.
	assert.Equal(t, "a", entries[0].ID)
}

func TestCheckoutTimeHandling(t *testing.T) {
	_, err := UpsertSingleDay(nil, "2025-06-02", Draft{Status: StatusOccupied, BookedBy: "Ann", CheckoutTime: "25:00"}, "a")
	assert.ErrorIs(t, err, ErrInvalidCheckoutTime)

	entries, err := AddRange(nil, "2025-06-01", "2025-06-02", Draft{Status: StatusOccupied, BookedBy: "Ann", CheckoutTime: "10:30"}, "a")
	require.NoError(t, err)
	assert.Empty(t, entries[0].CheckoutTime)

	entries, err = UpsertSingleDay(nil, "2025-06-05", Draft{Status: StatusCleaning, CheckoutTime: "10:30"}, "b")
	require.NoError(t, err)
	assert.Empty(t, entries[0].CheckoutTime)
}

func TestRemoveEntryIsIdempotent(t *testing.T) {
	entries := janeDoeRange(t)

	assert.Empty(t, RemoveEntry(entries, "e1"))
	assert.Equal(t, entries, RemoveEntry(entries, "missing"))
	assert.NotNil(t, RemoveEntry(nil, "e1"))
}

func TestFindOverlapHonoursExclusions(t *testing.T) {
	entries := []StatusEntry{
		{ID: "a", Status: StatusCleaning, StartDate: "2025-06-01", EndDate: "2025-06-01"},
		{ID: "b", Status: StatusMaintenance, StartDate: "2025-06-01", EndDate: "2025-06-03"},
	}

	found, ok := FindOverlap(entries, "2025-06-01", "2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "a", found.ID)

	found, ok = FindOverlap(entries, "2025-06-01", "2025-06-01", "a")
	require.True(t, ok)
	assert.Equal(t, "b", found.ID)

	_, ok = FindOverlap(entries, "2025-06-01", "2025-06-01", "a", "b")
	assert.False(t, ok)

	conflict, ok := CheckConflict(entries, "2025-06-03", "2025-06-09", "a")
	require.True(t, ok)
	assert.Equal(t, Conflict{ConflictingStatus: StatusMaintenance, ConflictingRangeLabel: "Jun 1–Jun 3"}, conflict)
}

func TestResolveLaterInsertionWinsOnOverlap(t *testing.T) {
	entries := []StatusEntry{
		{ID: "old", Status: StatusCleaning, StartDate: "2025-06-01", EndDate: "2025-06-05"},
		{ID: "new", Status: StatusMaintenance, StartDate: "2025-06-03", EndDate: "2025-06-03"},
	}
	assert.Equal(t, StatusMaintenance, ResolveStatusKey(entries, "2025-06-03", StatusAvailable))
	assert.Equal(t, StatusCleaning, ResolveStatusKey(entries, "2025-06-04", StatusAvailable))
}

func TestRegistrySetRoomEntries(t *testing.T) {
	registry := Registry{}
	assert.Empty(t, registry.RoomEntries(101))
	assert.NotNil(t, registry.RoomEntries(101))

	withRoom := registry.SetRoomEntries(101, janeDoeRange(t))
	assert.Len(t, withRoom.RoomEntries(101), 1)
	assert.Empty(t, registry, "original registry must not change")
	assert.Equal(t, []int{101}, withRoom.Rooms())

	cleared := withRoom.SetRoomEntries(101, nil)
	_, present := cleared[101]
	assert.False(t, present)
}

func TestBuildTimelineOffsetWindow(t *testing.T) {
	today := day(t, "2025-06-10")
	registry := Registry{
		101: {{ID: "m", Status: StatusMaintenance, StartDate: "2025-06-10", EndDate: "2025-06-10"}},
	}
	rooms := []TimelineRoom{{Number: 101, DefaultStatus: StatusAvailable}, {Number: 102, DefaultStatus: StatusCleaning}}

	timeline := BuildTimeline(rooms, registry, 3, -1, today)

	assert.Equal(t, []RoomStatus{StatusAvailable, StatusMaintenance, StatusAvailable}, timeline[101])
	assert.Equal(t, []RoomStatus{StatusCleaning, StatusCleaning, StatusCleaning}, timeline[102])

	status, ok := timeline.StatusAt(101, 0, -1)
	require.True(t, ok)
	assert.Equal(t, StatusMaintenance, status)
	_, ok = timeline.StatusAt(101, 2, -1)
	assert.False(t, ok)
	_, ok = timeline.StatusAt(999, 0, -1)
	assert.False(t, ok)
}

func TestBuildTimelineMatchesResolution(t *testing.T) {
	today := day(t, "2025-02-27")
	entries := []StatusEntry{
		{ID: "a", Status: StatusOccupied, StartDate: "2025-02-20", EndDate: "2025-02-28", BookedBy: "Kim"},
		{ID: "b", Status: StatusCleaning, StartDate: "2025-03-01", EndDate: "2025-03-01"},
		{ID: "c", Status: StatusMaintenance, StartDate: "2025-03-03", EndDate: "2025-03-20"},
	}
	registry := Registry{7: entries}
	rooms := []TimelineRoom{{Number: 7, DefaultStatus: StatusAvailable}}

	week := BuildTimeline(rooms, registry, 7, 0, today)
	assert.Equal(t, ResolveStatus(entries, today, StatusAvailable), week[7][0])

	for _, offset := range []int{-30, -3, 0, 2, 11} {
		window := BuildTimeline(rooms, registry, 14, offset, today)
		for i, got := range window[7] {
			want := ResolveStatus(entries, calendar.AddDays(today, offset+i), StatusAvailable)
			assert.Equal(t, want, got, "offset %d index %d", offset, i)
		}
	}

	assert.Empty(t, BuildTimeline(rooms, registry, 0, 0, today)[7])
}

func TestDiffIsIdentityBased(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	previous := []StatusEntry{
		{ID: "keep", Status: StatusCleaning, StartDate: "2025-06-01", EndDate: "2025-06-01"},
		{ID: "drop1", Status: StatusMaintenance, StartDate: "2025-06-02", EndDate: "2025-06-02"},
		{ID: "drop2", Status: StatusMaintenance, StartDate: "2025-06-03", EndDate: "2025-06-03"},
	}
	next := []StatusEntry{
		{ID: "add1", Status: StatusOccupied, StartDate: "2025-06-05", EndDate: "2025-06-06", BookedBy: "Lee"},
		{ID: "keep", Status: StatusMaintenance, StartDate: "2025-06-01", EndDate: "2025-06-09"},
		{ID: "add2", Status: StatusCleaning, StartDate: "2025-06-04", EndDate: "2025-06-04"},
	}

	events := Diff(101, previous, next, now)

	require.Len(t, events, 4)
	got := make([]string, len(events))
	for i, event := range events {
		got[i] = fmt.Sprintf("%s:%s", event.Action, event.EntryID)
		assert.Equal(t, 101, event.RoomNumber)
		assert.Equal(t, now, event.CreatedAt)
	}
	assert.Equal(t, []string{"schedule_added:add1", "schedule_added:add2", "schedule_removed:drop1", "schedule_removed:drop2"}, got)
	assert.Equal(t, "Lee", events[0].BookedBy)
	assert.Empty(t, Diff(101, next, next, now))
}

func TestDiffFromEmptyListsEveryEntry(t *testing.T) {
	entries := []StatusEntry{
		{ID: "a", Status: StatusOccupied, StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Jane Doe"},
		{ID: "b", Status: StatusCleaning, StartDate: "2025-06-04", EndDate: "2025-06-04"},
	}
	events := Diff(101, nil, entries, time.Time{})
	require.Len(t, events, 2)
	for i, event := range events {
		assert.Equal(t, ActionAdded, event.Action)
		assert.Equal(t, entries[i].Status, event.Status)
		assert.Equal(t, entries[i].StartDate, event.StartDate)
		assert.Equal(t, entries[i].EndDate, event.EndDate)
	}
}

func TestNormalizeSortsAndTrims(t *testing.T) {
	entries := []StatusEntry{
		{ID: "z", Status: StatusCleaning, StartDate: "2025-06-04", EndDate: "2025-06-04", BookedBy: " kept "},
		{ID: "b", Status: StatusOccupied, StartDate: "2025-06-01", EndDate: "2025-06-01", BookedBy: "  Ann  "},
		{ID: "a", Status: StatusMaintenance, StartDate: "2025-06-01", EndDate: "2025-06-01"},
	}

	normalized := Normalize(entries)

	assert.Equal(t, []string{"a", "b", "z"}, []string{normalized[0].ID, normalized[1].ID, normalized[2].ID})
	assert.Equal(t, "Ann", normalized[1].BookedBy)
	assert.Equal(t, " kept ", normalized[2].BookedBy)
	assert.Equal(t, "z", entries[0].ID)
}

func TestValidateEntries(t *testing.T) {
	valid := []StatusEntry{
		{ID: "a", Status: StatusOccupied, StartDate: "2025-06-01", EndDate: "2025-06-03", BookedBy: "Jane"},
		{ID: "b", Status: StatusCleaning, StartDate: "2025-06-04", EndDate: "2025-06-04"},
	}
	require.NoError(t, ValidateEntries(valid))
	require.NoError(t, ValidateEntries(nil))

	tests := []struct {
		name    string
		entries []StatusEntry
		index   int
		want    error
	}{
		{name: "duplicate id", entries: append(valid, StatusEntry{ID: "a", Status: StatusCleaning, StartDate: "2025-07-01", EndDate: "2025-07-01"}), index: 2, want: ErrDuplicateID},
		{name: "inverted", entries: []StatusEntry{{ID: "a", Status: StatusCleaning, StartDate: "2025-06-02", EndDate: "2025-06-01"}}, index: 0, want: ErrInvalidRange},
		{name: "no booker", entries: []StatusEntry{{ID: "a", Status: StatusOccupied, StartDate: "2025-06-02", EndDate: "2025-06-02"}}, index: 0, want: ErrBookingNameRequired},
		{name: "bad checkout", entries: []StatusEntry{{ID: "a", Status: StatusOccupied, StartDate: "2025-06-02", EndDate: "2025-06-02", BookedBy: "x", CheckoutTime: "9am"}}, index: 0, want: ErrInvalidCheckoutTime},
		{name: "missing id", entries: []StatusEntry{{Status: StatusCleaning, StartDate: "2025-06-02", EndDate: "2025-06-02"}}, index: 0, want: ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries)
			var entryErr *EntryError
			require.ErrorAs(t, err, &entryErr)
			assert.Equal(t, tt.index, entryErr.Index)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	overlapping := append(valid, StatusEntry{ID: "c", Status: StatusMaintenance, StartDate: "2025-06-03", EndDate: "2025-06-05"})
	err := ValidateEntries(overlapping)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "a", conflict.Entry.ID)
}

func TestVersionIgnoresInsertionOrder(t *testing.T) {
	a := StatusEntry{ID: "a", Status: StatusCleaning, StartDate: "2025-06-01", EndDate: "2025-06-01"}
	b := StatusEntry{ID: "b", Status: StatusMaintenance, StartDate: "2025-06-02", EndDate: "2025-06-02"}

	v1 := Version([]StatusEntry{a, b})
	assert.Len(t, v1, 16)
	assert.Equal(t, v1, Version([]StatusEntry{b, a}))
	assert.NotEqual(t, v1, Version([]StatusEntry{a}))
	assert.Equal(t, Version(nil), Version([]StatusEntry{}))
}

func TestInsertionNeverProducesOverlap(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	base := day(t, "2025-01-01")

	for round := 0; round < 50; round++ {
		var entries []StatusEntry
		for i := 0; i < 40; i++ {
			start := calendar.AddDays(base, rng.IntN(60))
			length := rng.IntN(5)
			startKey := calendar.FormatDateKey(start)
			endKey := calendar.FormatDateKey(calendar.AddDays(start, length))
			id := fmt.Sprintf("r%d-%d", round, i)
			draft := Draft{Status: StatusCleaning}

			var next []StatusEntry
			var err error
			if length == 0 && rng.IntN(2) == 0 {
				next, err = UpsertSingleDay(entries, startKey, draft, id)
			} else {
				next, err = AddRange(entries, startKey, endKey, draft, id)
			}

			if err != nil {
				var conflict *ConflictError
				require.True(t, errors.As(err, &conflict))
				assert.True(t, calendar.RangesOverlap(startKey, endKey, conflict.Entry.StartDate, conflict.Entry.EndDate))
				continue
			}
			entries = next
		}

		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				require.False(t, calendar.RangesOverlap(a.StartDate, a.EndDate, b.StartDate, b.EndDate), "%v overlaps %v", a, b)
			}
		}

		// Without overlaps, scan order cannot change the outcome.
		shuffled := cloneEntries(entries)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for d := 0; d < 70; d++ {
			key := calendar.FormatDateKey(calendar.AddDays(base, d))
			assert.Equal(t, ResolveStatusKey(entries, key, StatusAvailable), ResolveStatusKey(shuffled, key, StatusAvailable))
		}
	}
}
