package api

import (
	"context"
	"net/http"
	"strconv"
)

// SummaryDependencies defines the interface for summary reads.
type SummaryDependencies interface {
	Summary(ctx context.Context, limit int) ([]SummaryEntry, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps     SummaryDependencies
	maxLimit int
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, maxLimit int) *SummaryHandler {
	return &SummaryHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetSummary handles GET /summary and GET /summary?limit=N.
// Without a limit every live match is returned.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	n := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, NewKind(op, ErrLimitExceeded))
			return
		}
	}
	entries, err := h.deps.Summary(r.Context(), n)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
