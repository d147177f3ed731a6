// Package export renders finished itineraries as iCalendar documents the
// client can import into a calendar app.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/tripcast/api/internal/models"
)

// dayStartHour anchors items that carry no parseable clock time.
const dayStartHour = 9

// Calendar renders one VEVENT per itinerary item on the given day. Item
// times are parsed as wall clock ("15:04" or "3:04 PM"); items without one
// are laid end to end after the previous stop, travel time included.
func Calendar(date time.Time, title string, items []models.ItineraryItem) string {
	if title == "" {
		title = "Trip plan"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tripcast//trip planner//EN")
	cal.SetName(title)

	cursor := time.Date(date.Year(), date.Month(), date.Day(), dayStartHour, 0, 0, 0, date.Location())
	for _, item := range items {
		start := cursor
		if clock, ok := parseClock(item.Time); ok {
			start = time.Date(date.Year(), date.Month(), date.Day(),
				clock.Hour(), clock.Minute(), 0, 0, date.Location())
		}

		duration := time.Duration(item.DurationMinutes) * time.Minute
		if duration <= 0 {
			duration = time.Hour
		}

		event := cal.AddEvent(uuid.NewString())
		event.SetDtStampTime(time.Now().UTC())
		event.SetStartAt(start)
		event.SetEndAt(start.Add(duration))
		event.SetSummary(item.Activity)
		event.SetDescription(describe(item))

		cursor = start.Add(duration + time.Duration(item.TravelTimeMinutes)*time.Minute)
	}

	return cal.Serialize()
}

func describe(item models.ItineraryItem) string {
	desc := fmt.Sprintf("%s, %d min", item.Type, item.DurationMinutes)
	if item.Cost > 0 {
		desc += fmt.Sprintf(", $%.2f", item.Cost)
	}
	if item.Notes != "" {
		desc += ". " + item.Notes
	}
	return desc
}

func parseClock(s string) (time.Time, bool) {
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
