// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
	"github.com/okian/scoreboard/pkg/logger"
)

const defaultMaxSummaryLimit = 100

// MatchView mirrors the read shape of a live match.
type MatchView = types.MatchView

// SummaryEntry mirrors a ranked summary row.
type SummaryEntry = types.SummaryEntry

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	MatchDependencies
	SummaryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	matchesHandler *MatchesHandler
	summaryHandler *SummaryHandler

	maxSummaryLimit int
	logger          logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxSummaryLimit caps the limit accepted by GET /summary.
func WithMaxSummaryLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSummaryLimit = n
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxSummaryLimit: defaultMaxSummaryLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("http")

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.eventsHandler = NewEventsHandler(deps)
	s.matchesHandler = NewMatchesHandler(deps)
	s.summaryHandler = NewSummaryHandler(deps, s.maxSummaryLimit)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", "healthz", s.healthHandler.HandleHealth)
	s.handle(mux, "GET /stats", "stats", s.statsHandler.HandleStats)
	s.handle(mux, "POST /events", "events", s.eventsHandler.HandlePostEvent)
	s.handle(mux, "POST /matches", "matches", s.matchesHandler.HandleStart)
	s.handle(mux, "GET /matches", "matches", s.matchesHandler.HandleList)
	s.handle(mux, "GET /matches/{id}", "match", s.matchesHandler.HandleGet)
	s.handle(mux, "DELETE /matches/{id}", "match", s.matchesHandler.HandleFinish)
	s.handle(mux, "PUT /matches/{id}/score", "score", s.matchesHandler.HandleUpdateScore)
	s.handle(mux, "GET /summary", "summary", s.summaryHandler.HandleGetSummary)
}

func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.Handle(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint), s.logger))
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
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pathID parses the {id} path segment.
func pathID(op string, r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, NewKind(op, ErrBadRequest)
	}
	return id, nil
}

func team(name *string) *model.Team {
	if name == nil {
		return nil
	}
	return &model.Team{Name: *name}
}
