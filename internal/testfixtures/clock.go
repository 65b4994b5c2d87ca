package testfixtures

import (
	"sync"
	"time"

	"github.com/example/room-availability/internal/calendar"
)

// Clock is a controllable time source. Schedules are keyed by calendar day,
// so the helpers move it in whole days or jump straight to a date key while
// keeping the wall clock time of day.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection into services.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// AdvanceDays moves the clock by whole calendar days in its own location.
// Negative values move it back.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.AddDate(0, 0, days)
	return c.current
}

// SetDate jumps to the day named by key, keeping the time of day.
func (c *Clock) SetDate(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	day, err := calendar.ParseDateKey(key, c.current.Location())
	if err != nil {
		return err
	}
	h, m, s := c.current.Clock()
	c.current = time.Date(day.Year(), day.Month(), day.Day(), h, m, s, c.current.Nanosecond(), c.current.Location())
	return nil
}

// DateKey reports the clock's current day in its own location.
func (c *Clock) DateKey() string {
	return calendar.FormatDateKey(c.Now())
}
