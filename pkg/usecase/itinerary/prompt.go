package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/trek/pkg/model"
)

// DayLabelFormat is the calendar date layout used in day labels (dd-mm-yyyy)
const DayLabelFormat = "02-01-2006"

// BuildDayPrompt constructs a prompt asking for a single day's plan: three
// labeled segments with explicit time ranges.
func BuildDayPrompt(req *model.TripRequest, day time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan one day of a trip from %s to %s for %s.\n",
		req.Origin, req.Destination, day.Format(DayLabelFormat))
	writePreferences(&b, req)
	b.WriteString("Requirements:\n")
	b.WriteString("1. Write exactly three sections labeled Morning, Midday and Evening.\n")
	b.WriteString("2. Give every activity an explicit time range (e.g. 08:00 - 09:30).\n")
	b.WriteString("3. Describe each activity in 1-2 sentences.\n")
	b.WriteString("4. Cover only this one date.\n")

	return b.String()
}

// BuildTripPrompt constructs a single prompt covering the whole date range,
// delegating per-day structuring to the model's own output formatting.
func BuildTripPrompt(req *model.TripRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a travel itinerary from %s to %s, %s to %s.\n",
		req.StartDate.Format(DayLabelFormat), req.EndDate.Format(DayLabelFormat),
		req.Origin, req.Destination)
	writePreferences(&b, req)
	b.WriteString("Requirements:\n")
	b.WriteString("1. Start each day with a single line 'Day dd-mm-yyyy'.\n")
	b.WriteString("2. Write Morning, Midday and Evening sections, each on its own line.\n")
	b.WriteString("3. Give explicit times (e.g. 08:00 - 09:30), 1-2 sentences per activity.\n")
	b.WriteString("4. Do not repeat the day label for individual activities.\n")

	return b.String()
}

func writePreferences(b *strings.Builder, req *model.TripRequest) {
	if len(req.Interests) > 0 {
		fmt.Fprintf(b, "Interests: %s.\n", strings.Join(req.Interests, ", "))
	}
	if req.Pace != "" {
		fmt.Fprintf(b, "Pace: %s.\n", req.Pace)
	}
}
