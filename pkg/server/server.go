package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/m-mizutani/trek/pkg/adapter"
	"github.com/m-mizutani/trek/pkg/repository"
	"github.com/m-mizutani/trek/pkg/usecase/itinerary"
)

// Server exposes the trip planner to a browser frontend
type Server struct {
	identity adapter.Identity
	repo     repository.Repository
	llm      adapter.LLM
	planner  *itinerary.Planner
}

// New creates a new Server
func New(identity adapter.Identity, repo repository.Repository, llm adapter.LLM) *Server {
	return &Server{
		identity: identity,
		repo:     repo,
		llm:      llm,
		planner:  itinerary.New(llm, repo),
	}
}

// Handler returns the HTTP handler with all routes and CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)

	mux.Handle("POST /api/plan", s.authenticated(s.handlePlan))
	mux.Handle("POST /api/chat", s.authenticated(s.handleChat))
	mux.Handle("POST /api/generate", s.authenticated(s.handleGenerate))
	mux.Handle("GET /api/history", s.authenticated(s.handleHistory))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(mux)
}
