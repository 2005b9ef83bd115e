package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/scoreboard/internal/domain/model"
)

// MatchDependencies defines the match operations used by the handlers.
type MatchDependencies interface {
	StartMatch(ctx context.Context, home, away *model.Team) (MatchView, error)
	FinishMatch(ctx context.Context, id int) error
	UpdateScore(ctx context.Context, id int, homeScore, awayScore *int) error
	Matches(ctx context.Context) []MatchView
	Match(ctx context.Context, id int) (SummaryEntry, error)
}

// MatchesHandler serves the /matches routes.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type startMatchRequest struct {
	HomeTeam *string `json:"home_team"`
	AwayTeam *string `json:"away_team"`
}

type scoreRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

// maxScore bounds each side so a total can never overflow.
const maxScore = 999

var errScoreRange = errors.New("scores must be between 0 and " + strconv.Itoa(maxScore))

// validScore accepts an omitted side or a score in [0, maxScore].
func validScore(v *int) bool {
	return v == nil || (*v >= 0 && *v <= maxScore)
}

// HandleStart handles POST /matches.
// A missing team is passed through as nil so the registry names the side.
func (h *MatchesHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_match"
	var req startMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.StartMatch(r.Context(), team(req.HomeTeam), team(req.AwayTeam))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/matches/"+strconv.Itoa(m.ID))
	writeJSON(w, http.StatusCreated, m)
}

// HandleList handles GET /matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Matches(r.Context()))
}

// HandleGet handles GET /matches/{id}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	id, err := pathID(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.deps.Match(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleFinish handles DELETE /matches/{id}. Finishing an unknown or already
// finished match still succeeds.
func (h *MatchesHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	const op = "api.finish_match"
	id, err := pathID(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.FinishMatch(r.Context(), id); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateScore handles PUT /matches/{id}/score.
func (h *MatchesHandler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_score"
	id, err := pathID(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if !validScore(req.HomeScore) || !validScore(req.AwayScore) {
		writeError(w, WrapKind(op, ErrBadRequest, errScoreRange))
		return
	}
	if err := h.deps.UpdateScore(r.Context(), id, req.HomeScore, req.AwayScore); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
