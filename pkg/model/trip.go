package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidPace      = goerr.New("invalid pace")
	ErrInvalidDateRange = goerr.New("end date must not be before start date")

	// ErrInvalidPayload is returned by the generation entry point when the
	// payload carries neither a date range nor a free-text prompt. It is
	// returned before any backend call is made.
	ErrInvalidPayload = goerr.New("invalid payload: neither date range nor prompt given")
)

type Pace string

const (
	PaceRelaxed Pace = "relaxed"
	PaceNormal  Pace = "normal"
	PaceFast    Pace = "fast"
)

// Validate checks if the pace is valid
func (p Pace) Validate() error {
	switch p {
	case PaceRelaxed, PaceNormal, PaceFast:
		return nil
	default:
		return goerr.Wrap(ErrInvalidPace, "unknown pace", goerr.V("pace", p))
	}
}

// TripRequest describes one itinerary generation request. StartDate and
// EndDate are calendar dates; the time of day is ignored.
type TripRequest struct {
	Origin      string    `json:"origin" firestore:"origin"`
	Destination string    `json:"destination" firestore:"destination"`
	StartDate   time.Time `json:"start_date" firestore:"start_date"`
	EndDate     time.Time `json:"end_date" firestore:"end_date"`
	Interests   []string  `json:"interests" firestore:"interests"`
	Pace        Pace      `json:"pace" firestore:"pace"`
}

// Validate rejects an empty or inverted date range and an unknown pace.
func (r *TripRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return goerr.New("start and end dates are required")
	}
	if dateOnly(r.EndDate).Before(dateOnly(r.StartDate)) {
		return goerr.Wrap(ErrInvalidDateRange, "invalid trip date range",
			goerr.V("start", r.StartDate), goerr.V("end", r.EndDate))
	}
	if r.Pace != "" {
		if err := r.Pace.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Days returns every calendar date in the inclusive [StartDate, EndDate]
// range, in chronological order.
func (r *TripRequest) Days() []time.Time {
	var days []time.Time
	last := dateOnly(r.EndDate)
	for d := dateOnly(r.StartDate); !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
