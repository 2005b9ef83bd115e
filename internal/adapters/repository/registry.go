package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/metrics"
)

// Registry operation names used in metrics.
const (
	opStart   = "start"
	opFinish  = "finish"
	opUpdate  = "update_score"
	opSummary = "summary"
)

// Registry is the in-memory Store. It exclusively owns every match it
// creates; callers only ever receive copies and refer back by id.
//
// Identifiers come from a counter that never goes backwards, so an id
// held by a caller cannot be handed to a different match after Finish.
//
// Finish and UpdateScore on an id that is not live succeed without doing
// anything. Callers never need to check existence first.
type Registry struct {
	mu     sync.Mutex
	lastID int
	live   []*model.Match // start order
	byID   map[int]*model.Match
	index  *orderIndex

	capacityHint int
	priority     func() uint64
}

var _ Store = (*Registry)(nil)

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		capacityHint: 16,
		priority:     rand.Uint64,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.live = make([]*model.Match, 0, r.capacityHint)
	r.byID = make(map[int]*model.Match, r.capacityHint)
	r.index = newOrderIndex(r.priority)

	metrics.UpdateLiveMatches(0)
	return r
}

func observe(op string, start time.Time) {
	metrics.RecordRegistryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func keyOf(m *model.Match) indexKey {
	return indexKey{total: m.Score.Total(), id: m.ID}
}

// Start implements Store.Start.
func (r *Registry) Start(_ context.Context, home, away *model.Team) (model.Match, error) {
	defer observe(opStart, time.Now())

	if home == nil {
		metrics.RecordInvalidArgument(opStart)
		return model.Match{}, fmt.Errorf("%w: home team is required", ErrInvalidArgument)
	}
	if away == nil {
		metrics.RecordInvalidArgument(opStart)
		return model.Match{}, fmt.Errorf("%w: away team is required", ErrInvalidArgument)
	}

	r.mu.Lock()
	r.lastID++
	m := &model.Match{
		ID:       r.lastID,
		HomeTeam: *home,
		AwayTeam: *away,
	}
	r.live = append(r.live, m)
	r.byID[m.ID] = m
	r.index.insert(keyOf(m))
	out, live := *m, len(r.live)
	r.mu.Unlock()

	metrics.RecordMatchStarted()
	metrics.UpdateLiveMatches(live)
	return out, nil
}

// Finish implements Store.Finish.
func (r *Registry) Finish(_ context.Context, match *model.Match) error {
	defer observe(opFinish, time.Now())

	if match == nil {
		metrics.RecordInvalidArgument(opFinish)
		return fmt.Errorf("%w: match is required", ErrInvalidArgument)
	}

	r.mu.Lock()
	m, ok := r.byID[match.ID]
	if !ok {
		r.mu.Unlock()
		metrics.RecordRegistryNoop(opFinish)
		return nil
	}
	delete(r.byID, m.ID)
	r.live = slices.DeleteFunc(r.live, func(x *model.Match) bool { return x.ID == m.ID })
	r.index.remove(keyOf(m))
	live := len(r.live)
	r.mu.Unlock()

	metrics.RecordMatchFinished()
	metrics.UpdateLiveMatches(live)
	return nil
}

// UpdateScore implements Store.UpdateScore.
func (r *Registry) UpdateScore(_ context.Context, match *model.Match, homeScore, awayScore *int) error {
	defer observe(opUpdate, time.Now())

	if match == nil {
		metrics.RecordInvalidArgument(opUpdate)
		return fmt.Errorf("%w: match is required", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[match.ID]
	if !ok {
		metrics.RecordRegistryNoop(opUpdate)
		return nil
	}

	from := keyOf(m)
	if homeScore != nil {
		m.Score.Home = *homeScore
	}
	if awayScore != nil {
		m.Score.Away = *awayScore
	}
	r.index.move(from, keyOf(m))

	metrics.RecordScoreUpdate()
	return nil
}

// Summary implements Store.Summary.
func (r *Registry) Summary(_ context.Context) []model.Match {
	defer observe(opSummary, time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ranked(r.index.len())
}

// TopN implements Store.TopN.
func (r *Registry) TopN(_ context.Context, n int) ([]model.Match, error) {
	defer observe(opSummary, time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ranked(n), nil
}

// ranked copies the first n matches in summary order. Caller holds mu.
func (r *Registry) ranked(n int) []model.Match {
	ids := r.index.ids(n)
	out := make([]model.Match, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.byID[id])
	}
	return out
}

// Matches implements Store.Matches.
func (r *Registry) Matches(_ context.Context) []model.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Match, len(r.live))
	for i, m := range r.live {
		out[i] = *m
	}
	return out
}

// Get implements Store.Get.
func (r *Registry) Get(_ context.Context, id int) (model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return model.Match{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return *m, nil
}

// Rank implements Store.Rank.
func (r *Registry) Rank(_ context.Context, id int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r.index.rank(keyOf(m)), nil
}

// Count implements Store.Count.
func (r *Registry) Count(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
