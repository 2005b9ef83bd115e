// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/scoreboard/internal/domain/dedupe"
	"github.com/okian/scoreboard/internal/domain/model"
)

// EventDependencies defines the interface for event processing dependencies
type EventDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.ScoreEvent) error
}

// EventsHandler handles event requests
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	EventID   string `json:"event_id"`
	MatchID   int    `json:"match_id"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	TS        string `json:"ts"`
}

func (e eventRequest) validate() (time.Time, error) {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return time.Time{}, errors.New("missing event_id")
	case e.MatchID < 1:
		return time.Time{}, errors.New("match_id must be positive")
	case e.HomeScore == nil && e.AwayScore == nil:
		return time.Time{}, errors.New("one of home_score or away_score is required")
	case !validScore(e.HomeScore), !validScore(e.AwayScore):
		return time.Time{}, errScoreRange
	case strings.TrimSpace(e.TS) == "":
		return time.Time{}, errors.New("missing ts")
	}
	ts, err := time.Parse(time.RFC3339, e.TS)
	if err != nil {
		return time.Time{}, errors.New("invalid ts; must be RFC3339")
	}
	return ts, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostEvent handles POST /events requests
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	ts, err := req.validate()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	ev := model.ScoreEvent{
		EventID:   req.EventID,
		MatchID:   req.MatchID,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
		TS:        ts,
	}
	if err := h.deps.Enqueue(r.Context(), ev); err != nil {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
