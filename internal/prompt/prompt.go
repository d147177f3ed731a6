// Package prompt renders planning requests into generator instructions.
// Every prompt asks the model for a two-part answer, a REASONING section
// followed by a RESULT section, using the marker literals the stream
// package classifies on.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tripcast/api/internal/geo"
	"github.com/tripcast/api/internal/models"
	"github.com/tripcast/api/internal/stream"
)

const (
	fullDayMinutes = 480
	halfDayMinutes = 240
	defaultMinutes = 180
	quickPickCount = 5
)

// DurationMinutes maps the caller's duration label to available minutes.
func DurationMinutes(duration string) int {
	switch duration {
	case "Full Day":
		return fullDayMinutes
	case "Half Day":
		return halfDayMinutes
	default:
		return defaultMinutes
	}
}

// Build renders one instruction string for the generator from the request
// and the candidates that survived filtering. Pure string construction.
func Build(req *models.PlanRequest, admitted []models.Activity) (string, error) {
	lines, err := candidateLines(req.Hotel, admitted)
	if err != nil {
		return "", err
	}

	switch req.Mode {
	case models.PlanModeFull:
		return buildFull(req, lines), nil
	default:
		return buildQuick(req, lines), nil
	}
}

func buildQuick(req *models.PlanRequest, candidates string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a local travel guide. A guest is staying at %s in %s.\n\n",
		req.Hotel.Name, req.Hotel.City)
	fmt.Fprintf(&b, "Recommend exactly %d activities from this list:\n%s\n\n", quickPickCount, candidates)
	fmt.Fprintf(&b, "Constraints: total budget $%.2f, everything within %.1f miles of the hotel.\n\n",
		req.Preferences.Budget, req.Preferences.MaxDistance)

	writeOutputContract(&b, fmt.Sprintf(
		`a JSON array of exactly %d objects, each {"name", "type", "time_needed_minutes", "why_chosen"}`,
		quickPickCount))

	return b.String()
}

func buildFull(req *models.PlanRequest, candidates string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a local travel guide planning a day route. A guest is staying at %s in %s and has %d minutes available.\n\n",
		req.Hotel.Name, req.Hotel.City, DurationMinutes(req.Preferences.Duration))
	fmt.Fprintf(&b, "Plan an ordered route through a selection of these activities, starting and ending at the hotel:\n%s\n\n", candidates)
	fmt.Fprintf(&b, "Constraints: total budget $%.2f, everything within %.1f miles of the hotel. Account for travel time between stops.\n\n",
		req.Preferences.Budget, req.Preferences.MaxDistance)

	writeOutputContract(&b,
		`a JSON array of itinerary stops in visit order, each {"time", "activity", "type", "duration_minutes", "travel_time_minutes", "cost", "notes"}`)

	return b.String()
}

// writeOutputContract spells out the two-part response structure. The
// markers must match what the classifier looks for, so they come from the
// shared constants rather than being retyped here.
func writeOutputContract(b *strings.Builder, resultFormat string) {
	fmt.Fprintf(b, "Respond in exactly two parts:\n")
	fmt.Fprintf(b, "%s your thinking about which activities fit and why, in plain sentences.\n", stream.MarkerReasoning)
	fmt.Fprintf(b, "%s %s. The %s section must contain only JSON.\n",
		stream.MarkerResult, resultFormat, strings.TrimSuffix(stream.MarkerResult, ":"))
}

func candidateLines(hotel *models.Hotel, admitted []models.Activity) (string, error) {
	if len(admitted) == 0 {
		return "(no activities matched the constraints)", nil
	}

	origin := geo.Coordinate{Lat: hotel.Lat, Lng: hotel.Lng}
	lines := make([]string, 0, len(admitted))
	for _, a := range admitted {
		d, err := geo.Distance(origin, geo.Coordinate{Lat: a.Lat, Lng: a.Lng})
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): $%.2f, rated %.1f, %.1f miles from the hotel",
			a.Name, a.Type, a.Price, a.Rating, d))
	}
	return strings.Join(lines, "\n"), nil
}
