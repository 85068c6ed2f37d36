// Package handler implements the HTTP boundary of the Reactivities API.
// Handlers translate requests into mediator requests and turn the
// dispatcher's results and errors into JSON. They hold no business logic.
// Methods are split into domain-specific files (health.go, activity.go, openapi.go) but
// all share the same Server struct so they can access its dependencies.
package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/reactivities/backend/internal/mediator"
)

// Server carries the dependencies shared by every handler.
type Server struct {
	mediator mediator.Sender
	log      *slog.Logger
}

// NewServer constructs the Server. A nil logger falls back to slog.Default.
func NewServer(m mediator.Sender, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{mediator: m, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api/activities", func(r chi.Router) {
		r.Get("/", s.ListActivities)
		r.Put("/", s.EditActivityFromBody)
		r.Post("/", s.EditActivityFromBody)
		r.Get("/{id}", s.GetActivity)
		r.Put("/{id}", s.EditActivity)
	})
}

// Handler returns a chi router serving every endpoint.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
