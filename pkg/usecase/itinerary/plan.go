package itinerary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trek/pkg/adapter"
	"github.com/m-mizutani/trek/pkg/model"
	"github.com/m-mizutani/trek/pkg/repository"
	"github.com/m-mizutani/trek/pkg/utils/logging"
)

// Planner generates itineraries and persists the results
type Planner struct {
	llm  adapter.LLM
	repo repository.Repository
}

// New creates a new Planner. repo may be nil, in which case results are not
// persisted.
func New(llm adapter.LLM, repo repository.Repository) *Planner {
	return &Planner{
		llm:  llm,
		repo: repo,
	}
}

// PlanInput contains parameters for one itinerary generation
type PlanInput struct {
	// User is the acting account's email. When empty the result is not
	// persisted.
	User string

	Request *model.TripRequest

	// SingleShot issues one prompt covering the whole date range in a
	// single backend call instead of the default day-by-day loop.
	SingleShot bool
}

// Plan generates an itinerary for the requested date range. The default
// mode loops over each calendar day sequentially; a day whose generation
// yields no text is replaced by a placeholder line and never aborts the
// loop.
func (p *Planner) Plan(ctx context.Context, input PlanInput) (string, error) {
	if input.Request == nil {
		return "", goerr.New("trip request is required")
	}
	if err := input.Request.Validate(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	if input.SingleShot {
		text, err = p.llm.Generate(ctx, BuildTripPrompt(input.Request))
	} else {
		text, err = p.assemble(ctx, input.Request)
	}
	if err != nil {
		return "", err
	}

	if err := p.save(ctx, input.User, model.RecordTypeItinerary, input.Request, text); err != nil {
		return "", err
	}

	return text, nil
}

// assemble drives one generation per calendar day and joins the results in
// date order, separated by blank lines.
func (p *Planner) assemble(ctx context.Context, req *model.TripRequest) (string, error) {
	logger := logging.From(ctx)

	var sections []string
	for _, day := range req.Days() {
		label := day.Format(DayLabelFormat)

		text, err := p.llm.Generate(ctx, BuildDayPrompt(req, day))
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate day plan", goerr.V("date", label))
		}

		if text == "" {
			logger.Warn("no response for day, substituting placeholder", "date", label)
			sections = append(sections, Placeholder(day))
			continue
		}

		sections = append(sections, fmt.Sprintf("Day %s\n%s", label, text))
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n")), nil
}

// Placeholder is the fail-soft section substituted for a day whose
// generation produced no text.
func Placeholder(day time.Time) string {
	return fmt.Sprintf("(no response for %s)", day.Format(DayLabelFormat))
}

func (p *Planner) save(ctx context.Context, user string, typ model.RecordType, request any, response string) error {
	if p.repo == nil || user == "" {
		return nil
	}

	record := &model.HistoryRecord{
		ID:        model.NewRecordID(),
		Type:      typ,
		Timestamp: time.Now(),
		Request:   request,
		Response:  response,
	}

	if err := p.repo.PutRecord(ctx, user, record); err != nil {
		return goerr.Wrap(err, "failed to save history record", goerr.V("user", user))
	}

	return nil
}

// GenerateInput mirrors the loose payload accepted by the generation entry
// point: either a trip request (date range) or a free-text prompt.
type GenerateInput struct {
	User   string
	Trip   *model.TripRequest
	Prompt string
}

// Generate routes a loose generation payload. A payload with neither a date
// range nor a prompt yields model.ErrInvalidPayload without touching the
// backend.
func (p *Planner) Generate(ctx context.Context, input GenerateInput) (string, error) {
	switch {
	case input.Trip != nil && !input.Trip.StartDate.IsZero() && !input.Trip.EndDate.IsZero():
		return p.Plan(ctx, PlanInput{User: input.User, Request: input.Trip})

	case input.Prompt != "":
		text, err := p.llm.Generate(ctx, input.Prompt)
		if err != nil {
			return "", err
		}
		if err := p.save(ctx, input.User, model.RecordTypeChat, model.ChatRequest{Prompt: input.Prompt}, text); err != nil {
			return "", err
		}
		return text, nil

	default:
		return "", model.ErrInvalidPayload
	}
}
