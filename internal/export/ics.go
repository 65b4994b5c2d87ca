// Package export renders schedules and timelines into formats other tools
// can open: iCalendar feeds and spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/room-availability/internal/calendar"
	"github.com/example/room-availability/internal/scheduler"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//room-availability//dashboard//EN"

// EventSummary is the one-line title used for an entry.
func EventSummary(room int, entry scheduler.StatusEntry) string {
	if entry.BookedBy != "" {
		return fmt.Sprintf("Room %d: %s (%s)", room, entry.Status, entry.BookedBy)
	}
	return fmt.Sprintf("Room %d: %s", room, entry.Status)
}

// WriteRoomCalendar writes one all-day event per entry. DTEND is exclusive,
// so it falls on the day after the entry's last day.
func WriteRoomCalendar(w io.Writer, room int, entries []scheduler.StatusEntry, loc *time.Location, stamp time.Time) error {
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	for _, entry := range entries {
		start, err := calendar.ParseDateKey(entry.StartDate, loc)
		if err != nil {
			return fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		end, err := calendar.ParseDateKey(entry.EndDate, loc)
		if err != nil {
			return fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		event := cal.AddEvent(fmt.Sprintf("%s@room-%d", entry.ID, room))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(calendar.AddDays(end, 1))
		event.SetSummary(EventSummary(room, entry))
		event.SetProperty(ics.ComponentPropertyCategories, string(entry.Status))
		if entry.CheckoutTime != "" {
			event.SetDescription("Checkout at " + entry.CheckoutTime)
		}
	}

	return cal.SerializeTo(w)
}
