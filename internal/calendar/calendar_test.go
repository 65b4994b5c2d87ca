package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateKeyUsesLocalFields(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2025-06-01T20:00Z is already June 2nd in UTC+9.
	instant := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC).In(loc)

	assert.Equal(t, "2025-06-02", FormatDateKey(instant))
	assert.Equal(t, "0999-01-09", FormatDateKey(time.Date(999, 1, 9, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateKey(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)

	got, err := ParseDateKey("2025-06-03", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, loc), got)

	for _, bad := range []string{"", "2025-6-3", "2025/06/03", "2025-06-31", "20250603", "2025-06-03T00:00"} {
		_, err := ParseDateKey(bad, loc)
		assert.ErrorIs(t, err, ErrInvalidDateKey, bad)
		assert.False(t, IsDateKey(bad), bad)
	}
}

func TestDayOffsetAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}
	before := time.Date(2025, 3, 8, 0, 0, 0, 0, loc)
	after := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	assert.Equal(t, 2, DayOffset(before, after))
	assert.Equal(t, -2, DayOffset(after, before))
	assert.Equal(t, 0, DayOffset(before, before.Add(23*time.Hour)))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), AddDays(before.Add(5*time.Hour), 2))
}

func TestAddDaysToKey(t *testing.T) {
	got, err := AddDaysToKey("2024-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got)

	got, err = AddDaysToKey("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = AddDaysToKey("nope", 1)
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestRangeHelpers(t *testing.T) {
	assert.True(t, ContainsKey("2025-06-01", "2025-06-03", "2025-06-01"))
	assert.True(t, ContainsKey("2025-06-01", "2025-06-03", "2025-06-03"))
	assert.False(t, ContainsKey("2025-06-01", "2025-06-03", "2025-06-04"))

	assert.True(t, RangesOverlap("2025-06-01", "2025-06-03", "2025-06-03", "2025-06-05"))
	assert.False(t, RangesOverlap("2025-06-01", "2025-06-03", "2025-06-04", "2025-06-05"))
}

func TestRangeLabel(t *testing.T) {
	assert.Equal(t, "Jun 1–Jun 3", RangeLabel("2025-06-01", "2025-06-03"))
	assert.Equal(t, "Jun 2", RangeLabel("2025-06-02", "2025-06-02"))
	assert.Equal(t, "Dec 30, 2025–Jan 2, 2026", RangeLabel("2025-12-30", "2026-01-02"))
	assert.Equal(t, "bad–worse", RangeLabel("bad", "worse"))
}

func TestWindow(t *testing.T) {
	today := time.Date(2025, 2, 14, 15, 30, 0, 0, time.UTC)

	offset, days, err := Window(WindowWeek, today)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 7, days)

	offset, days, err = Window(WindowMonth, today)
	require.NoError(t, err)
	assert.Equal(t, -13, offset)
	assert.Equal(t, 28, days)

	offset, days, err = Window(WindowTwoMonths, today)
	require.NoError(t, err)
	assert.Equal(t, -13, offset)
	assert.Equal(t, 28+31, days)

	_, _, err = Window("fortnight", today)
	assert.ErrorIs(t, err, ErrUnknownWindow)
}

func TestParseWindowPreset(t *testing.T) {
	preset, err := ParseWindowPreset(" Month ")
	require.NoError(t, err)
	assert.Equal(t, WindowMonth, preset)

	preset, err = ParseWindowPreset("2-months")
	require.NoError(t, err)
	assert.Equal(t, WindowTwoMonths, preset)

	_, err = ParseWindowPreset("year")
	assert.ErrorIs(t, err, ErrUnknownWindow)
}
