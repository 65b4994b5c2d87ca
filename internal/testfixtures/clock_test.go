package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.DateKey(); got != "2024-01-02" {
		t.Fatalf("expected 2024-01-02, got %q", got)
	}
}

func TestClockAdvanceDaysKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	// The last Sunday of March 2024 is a 23 hour day in Berlin.
	start := time.Date(2024, time.March, 30, 9, 0, 0, 0, loc)
	clock := NewClock(start)

	updated := clock.AdvanceDays(2)
	if want := time.Date(2024, time.April, 1, 9, 0, 0, 0, loc); !updated.Equal(want) {
		t.Fatalf("expected %v, got %v", want, updated)
	}
	if got := clock.AdvanceDays(-2); !got.Equal(start) {
		t.Fatalf("expected to move back to %v, got %v", start, got)
	}
}

func TestClockSetDate(t *testing.T) {
	clock := NewClock(time.Date(2025, time.June, 1, 22, 30, 0, 0, time.UTC))

	if err := clock.SetDate("2025-12-31"); err != nil {
		t.Fatalf("SetDate returned error: %v", err)
	}
	if want := time.Date(2025, time.December, 31, 22, 30, 0, 0, time.UTC); !clock.Now().Equal(want) {
		t.Fatalf("expected %v, got %v", want, clock.Now())
	}

	if err := clock.SetDate("2025-02-30"); err == nil {
		t.Fatalf("expected error for an impossible date")
	}
	if got := clock.DateKey(); got != "2025-12-31" {
		t.Fatalf("failed SetDate must leave the clock alone, got %q", got)
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	clock.AdvanceDays(1)
	if got := nowFn(); got.Day() != 2 {
		t.Fatalf("expected injected func to follow the clock, got %v", got)
	}

	var missing *Clock
	if missing.NowFunc() == nil {
		t.Fatalf("nil clock must fall back to a real time source")
	}
}
