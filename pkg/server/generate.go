package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/trek/pkg/model"
	"github.com/m-mizutani/trek/pkg/usecase/chat"
	"github.com/m-mizutani/trek/pkg/usecase/itinerary"
)

// requestDateFormat is the calendar date layout accepted from the frontend
const requestDateFormat = "2006-01-02"

type tripRequestBody struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Interests   []string `json:"interests"`
	Pace        string   `json:"pace"`
	SingleShot  bool     `json:"single_shot"`

	// Prompt is only honored by the combined /api/generate entry point
	Prompt string `json:"prompt"`
}

func (b *tripRequestBody) toTrip() (*model.TripRequest, error) {
	start, err := time.Parse(requestDateFormat, b.StartDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid start_date, use YYYY-MM-DD")
	}
	end, err := time.Parse(requestDateFormat, b.EndDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid end_date, use YYYY-MM-DD")
	}

	return &model.TripRequest{
		Origin:      b.Origin,
		Destination: b.Destination,
		StartDate:   start,
		EndDate:     end,
		Interests:   b.Interests,
		Pace:        model.Pace(b.Pace),
	}, nil
}

type generateResponse struct {
	Response string `json:"response"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body tripRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	trip, err := body.toTrip()
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	text, err := s.planner.Plan(ctx, itinerary.PlanInput{
		User:       userFrom(ctx),
		Request:    trip,
		SingleShot: body.SingleShot,
	})
	switch {
	case err == nil:
		writeJSON(ctx, w, http.StatusOK, generateResponse{Response: text})
	case errors.Is(err, model.ErrInvalidDateRange), errors.Is(err, model.ErrInvalidPace):
		writeError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		writeError(ctx, w, http.StatusBadGateway, "itinerary generation failed", err)
	}
}

type chatRequestBody struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.Message == "" {
		writeError(ctx, w, http.StatusBadRequest, "message is required", nil)
		return
	}

	session, err := chat.New(ctx, chat.NewInput{
		Repo: s.repo,
		LLM:  s.llm,
		User: userFrom(ctx),
	})
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "failed to open chat session", err)
		return
	}

	reply, err := session.Send(ctx, body.Message)
	if err != nil {
		writeError(ctx, w, http.StatusBadGateway, "chat generation failed", err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, chatResponse{Reply: reply})
}

// handleGenerate is the loose entry point mirroring the frontend's combined
// payload: a date-range pair selects itinerary mode, a prompt selects chat
// passthrough, anything else is rejected without touching the backend.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body tripRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	input := itinerary.GenerateInput{
		User:   userFrom(ctx),
		Prompt: body.Prompt,
	}
	if body.StartDate != "" && body.EndDate != "" {
		trip, err := body.toTrip()
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, err.Error(), err)
			return
		}
		input.Trip = trip
	}

	text, err := s.planner.Generate(ctx, input)
	switch {
	case err == nil:
		writeJSON(ctx, w, http.StatusOK, generateResponse{Response: text})
	case errors.Is(err, model.ErrInvalidPayload):
		writeError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, model.ErrInvalidDateRange), errors.Is(err, model.ErrInvalidPace):
		writeError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		writeError(ctx, w, http.StatusBadGateway, "generation failed", err)
	}
}
