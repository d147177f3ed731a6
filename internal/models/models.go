package models

import (
	"time"
)

// PlanMode selects how much itinerary structure the generator is asked for
type PlanMode string

const (
	PlanModeQuick PlanMode = "quick"
	PlanModeFull  PlanMode = "full"
)

// Valid reports whether the mode is one of the supported plan modes.
func (m PlanMode) Valid() bool {
	return m == PlanModeQuick || m == PlanModeFull
}

// Hotel is the trip origin submitted by the caller
type Hotel struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city"`
}

// Activity is a candidate point of interest. Price is optional on the wire
// and defaults to zero, meaning free admission.
type Activity struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Preferences carries the caller's filtering and itinerary constraints.
// MaxDistance is in miles from the hotel.
type Preferences struct {
	Budget      float64 `json:"budget"`
	MaxDistance float64 `json:"maxDistance"`
	Duration    string  `json:"duration"`
}

// PlanRequest is one trip-planning call; it lives for a single
// request/response cycle and is never stored.
type PlanRequest struct {
	Mode        PlanMode     `json:"mode" binding:"required"`
	Hotel       *Hotel       `json:"hotel" binding:"required"`
	Activities  []Activity   `json:"activities"`
	Preferences *Preferences `json:"preferences" binding:"required"`
}

// Severity classifies a progress notification for the debug viewer
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// ProgressNotification is a single debug-viewer record. It is broadcast to
// whoever is listening at that moment and never stored beyond delivery.
type ProgressNotification struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"level"`
	Message   string    `json:"message"`
}

// NewNotification stamps a notification with the current time.
func NewNotification(severity Severity, message string) ProgressNotification {
	return ProgressNotification{
		Timestamp: time.Now().UTC(),
		Severity:  severity,
		Message:   message,
	}
}

// ExtractedResult is the reasoning/result partition of one completed
// generation, derived once from the accumulated stream text.
type ExtractedResult struct {
	ReasoningText string `json:"reasoning_text"`
	ResultText    string `json:"result_text"`
}

// Stream event kinds sent to the planning caller
const (
	StreamEventChunk = "chunk"
	StreamEventDone  = "done"
	StreamEventError = "error"
)

// StreamEvent is one server-sent event on the planning response stream.
// Exactly one of Content, Response or Error is set depending on Type.
type StreamEvent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// QuickPick is one entry of a quick-mode result payload
type QuickPick struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	TimeNeededMinutes int    `json:"time_needed_minutes"`
	WhyChosen         string `json:"why_chosen"`
}

// ItineraryItem is one entry of a full-mode route plan
type ItineraryItem struct {
	Time              string  `json:"time"`
	Activity          string  `json:"activity"`
	Type              string  `json:"type"`
	DurationMinutes   int     `json:"duration_minutes"`
	TravelTimeMinutes int     `json:"travel_time_minutes"`
	Cost              float64 `json:"cost"`
	Notes             string  `json:"notes"`
}

// ExportRequest asks for an iCalendar rendering of a finished full-mode plan
type ExportRequest struct {
	Date  string          `json:"date"`
	Title string          `json:"title"`
	Items []ItineraryItem `json:"items" binding:"required"`
}
