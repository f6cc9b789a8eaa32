// Package api exposes the scoring session over JSON HTTP routes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/scoreboard/internal/domain/match"
	"github.com/okian/scoreboard/pkg/logger"
)

// Dependencies required by HTTP handlers. It mirrors the user actions of a
// scoring session one to one.
type Dependencies interface {
	NewMatch(ctx context.Context, name, team1, team2 string) (match.View, error)
	StartScoring(ctx context.Context, name string, unlock bool) (match.View, error)
	Current(ctx context.Context) (match.View, error)
	AddPoints(ctx context.Context, team match.Team, points int) (match.View, error)
	EndMatch(ctx context.Context, lock bool) (match.View, error)
	SetLocked(ctx context.Context, name string, locked bool) (match.View, error)
	Get(ctx context.Context, name string) (match.View, error)
	List(ctx context.Context) []match.View
	Results(ctx context.Context) []string
	Save(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	matches        *MatchesHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	allowedOrigins []string
	logger         logger.Logger
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		matches:       NewMatchesHandler(deps),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(Metrics)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/results", s.matches.HandleResults)
	r.Post("/save", s.matches.HandleSave)

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.matches.HandleList)
		r.Post("/", s.matches.HandleCreate)
		r.Get("/{name}", s.matches.HandleGet)
		r.Post("/{name}/start", s.matches.HandleStart)
		r.Put("/{name}/lock", s.matches.HandleLock)
		r.Delete("/{name}/lock", s.matches.HandleUnlock)
	})

	r.Route("/current", func(r chi.Router) {
		r.Get("/", s.matches.HandleCurrent)
		r.Post("/points", s.matches.HandleAddPoints)
		r.Post("/end", s.matches.HandleEnd)
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
