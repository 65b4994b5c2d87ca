// Package recurrence expands recurring status rules, written as RFC 5545
// RRULE strings, into concrete schedule entries for a room.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/room-availability/internal/calendar"
	"github.com/example/room-availability/internal/scheduler"
)

// DefaultMaxOccurrences bounds a single expansion.
const DefaultMaxOccurrences = 366

var (
	// ErrInvalidRule indicates the RRULE text could not be parsed.
	ErrInvalidRule = errors.New("recurrence: invalid rule")
	// ErrInvalidDuration indicates an occurrence would span less than one day.
	ErrInvalidDuration = errors.New("recurrence: duration must be at least one day")
	// ErrInvalidWindow indicates the expansion window ends before it starts.
	ErrInvalidWindow = errors.New("recurrence: window end precedes window start")
)

// Rule describes a status that repeats on the days matched by RRule.
type Rule struct {
	RRule        string
	Status       scheduler.RoomStatus
	BookedBy     string
	DurationDays int
}

// Occurrence is one expanded inclusive day range.
type Occurrence struct {
	StartDate string
	EndDate   string
}

// Skipped records an occurrence that was not applied because it collided
// with an existing entry.
type Skipped struct {
	Occurrence Occurrence
	Conflict   scheduler.Conflict
}

// Result is the outcome of applying a rule to a room's entries.
type Result struct {
	Entries   []scheduler.StatusEntry
	Added     []scheduler.StatusEntry
	Skipped   []Skipped
	Truncated bool
}

// Engine expands rules in a fixed location so that occurrence instants map
// onto the same calendar days as the rest of the dashboard.
type Engine struct {
	location       *time.Location
	maxOccurrences int
}

// NewEngine constructs an Engine. A nil location means time.Local.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc, maxOccurrences: DefaultMaxOccurrences}
}

// Expand lists the occurrences of rule whose first day falls within
// [from, to]. When the rule carries no DTSTART, from is used. The second
// return value reports whether the list was cut at the occurrence cap.
func (e *Engine) Expand(rule Rule, from, to time.Time) ([]Occurrence, bool, error) {
	if rule.DurationDays < 1 {
		return nil, false, ErrInvalidDuration
	}
	start := calendar.StartOfDay(from.In(e.location))
	end := calendar.StartOfDay(to.In(e.location))
	if end.Before(start) {
		return nil, false, ErrInvalidWindow
	}

	r, err := e.parse(rule.RRule, start)
	if err != nil {
		return nil, false, err
	}

	// Inclusive of every instant on the final day.
	times := r.Between(start, calendar.AddDays(end, 1).Add(-time.Second), true)

	truncated := false
	if len(times) > e.maxOccurrences {
		times = times[:e.maxOccurrences]
		truncated = true
	}

	occurrences := make([]Occurrence, 0, len(times))
	seen := make(map[string]struct{}, len(times))
	for _, t := range times {
		first := calendar.StartOfDay(t.In(e.location))
		key := calendar.FormatDateKey(first)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		occurrences = append(occurrences, Occurrence{
			StartDate: key,
			EndDate:   calendar.FormatDateKey(calendar.AddDays(first, rule.DurationDays-1)),
		})
	}
	return occurrences, truncated, nil
}

// Apply expands rule and adds each occurrence to entries in chronological
// order. Occurrences that overlap an existing or previously applied entry are
// skipped and reported; any other validation failure aborts the whole rule.
func (e *Engine) Apply(entries []scheduler.StatusEntry, rule Rule, from, to time.Time, newID func() string) (Result, error) {
	occurrences, truncated, err := e.Expand(rule, from, to)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Entries:   append([]scheduler.StatusEntry{}, entries...),
		Added:     make([]scheduler.StatusEntry, 0, len(occurrences)),
		Skipped:   make([]Skipped, 0),
		Truncated: truncated,
	}
	draft := scheduler.Draft{Status: rule.Status, BookedBy: rule.BookedBy}

	for _, occurrence := range occurrences {
		next, err := scheduler.AddRange(result.Entries, occurrence.StartDate, occurrence.EndDate, draft, newID())
		if err != nil {
			var conflict *scheduler.ConflictError
			if errors.As(err, &conflict) {
				result.Skipped = append(result.Skipped, Skipped{Occurrence: occurrence, Conflict: conflict.Conflict})
				continue
			}
			return Result{}, err
		}
		result.Entries = next
		result.Added = append(result.Added, next[len(next)-1])
	}
	return result, nil
}

func (e *Engine) parse(text string, dtstart time.Time) (*rrule.RRule, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "RRULE:")
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRule)
	}

	opt, err := rrule.StrToROptionInLocation(text, e.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = dtstart
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return r, nil
}
