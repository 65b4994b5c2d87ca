package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// WindowPreset names a display window that maps onto (offset, days).
type WindowPreset string

const (
	// WindowWeek covers today and the following six days.
	WindowWeek WindowPreset = "week"
	// WindowMonth covers the calendar month containing today.
	WindowMonth WindowPreset = "month"
	// WindowTwoMonths covers the current and the next calendar month.
	WindowTwoMonths WindowPreset = "two-months"
)

// ErrUnknownWindow indicates an unsupported window preset.
var ErrUnknownWindow = errors.New("calendar: unknown window preset")

// ParseWindowPreset normalizes a user supplied preset name.
func ParseWindowPreset(value string) (WindowPreset, error) {
	switch WindowPreset(strings.ToLower(strings.TrimSpace(value))) {
	case WindowWeek, "7d", "7-day":
		return WindowWeek, nil
	case WindowMonth, "current-month":
		return WindowMonth, nil
	case WindowTwoMonths, "2-months", "2m":
		return WindowTwoMonths, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, value)
}

// Window resolves a preset into a start day offset relative to today and a
// day count. Month windows start on the first day of today's month, so the
// offset is zero or negative.
func Window(preset WindowPreset, today time.Time) (offset, days int, err error) {
	today = StartOfDay(today)
	switch preset {
	case WindowWeek:
		return 0, 7, nil
	case WindowMonth, WindowTwoMonths:
		months := 1
		if preset == WindowTwoMonths {
			months = 2
		}
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return DayOffset(today, first), DayOffset(first, first.AddDate(0, months, 0)), nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownWindow, preset)
}
