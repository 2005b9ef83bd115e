// Package service composes the match registry with the asynchronous score
// feed and exposes the operations the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/okian/scoreboard/internal/adapters/mq/queue"
	"github.com/okian/scoreboard/internal/adapters/mq/worker"
	"github.com/okian/scoreboard/internal/adapters/repository"
	"github.com/okian/scoreboard/internal/domain/dedupe"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
)

// Service owns the registry and the score feed feeding it.
type Service struct {
	mu sync.RWMutex

	registry repository.Store
	deduper  dedupe.Deduper
	queues   []*queue.InMemoryQueue
	pool     *worker.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	stopped bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of feed partitions, one worker each.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the total event queue capacity, split across partitions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered. Zero or less means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry replaces the default in-memory registry.
func WithRegistry(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.registry = store
		}
	}
}

// New constructs a Service. Match operations are usable immediately;
// queued score events are only applied after Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  100_000,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")

	if s.registry == nil {
		s.registry = repository.NewRegistry()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	perQueue := s.queueSize / s.workerCount
	if perQueue < 1 {
		perQueue = 1
	}
	s.queues = make([]*queue.InMemoryQueue, s.workerCount)
	for i := range s.queues {
		s.queues[i] = queue.NewInMemoryQueue(
			queue.WithCapacity(perQueue),
			queue.WithName("partition-"+strconv.Itoa(i)),
		)
	}
	metrics.UpdateQueueCapacity(perQueue * s.workerCount)

	return s
}

// Start launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting scoreboard service...")

	workerQueues := make([]worker.Queue, len(s.queues))
	for i, q := range s.queues {
		workerQueues[i] = q
	}
	// Workers write to the registry directly; an event whose match was
	// finished resolves to the registry's silent no-op.
	s.pool = worker.NewPool(workerQueues, s.registry, worker.WithLogger(s.logger))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scoreboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queues and waits for queued events to be applied.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	s.logger.Info(ctx, "stopping scoreboard service...")

	if s.pool == nil {
		for _, q := range s.queues {
			_ = q.Close()
		}
		s.logger.Info(ctx, "scoreboard service stopped")
		return nil
	}

	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		s.logger.Error(ctx, "scoreboard service stop incomplete", logger.Error(err))
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "scoreboard service stopped")
	return nil
}

// StartMatch begins a match between home and away.
func (s *Service) StartMatch(ctx context.Context, home, away *model.Team) (types.MatchView, error) {
	m, err := s.registry.Start(ctx, home, away)
	if err != nil {
		return types.MatchView{}, err
	}
	s.logger.Debug(ctx, "match started",
		logger.Int("matchID", m.ID),
		logger.String("home", m.HomeTeam.Name),
		logger.String("away", m.AwayTeam.Name),
	)
	return types.FromMatch(m), nil
}

// FinishMatch removes a match from the board. Unknown ids are ignored.
func (s *Service) FinishMatch(ctx context.Context, id int) error {
	if err := s.registry.Finish(ctx, &model.Match{ID: id}); err != nil {
		return err
	}
	s.logger.Debug(ctx, "match finished", logger.Int("matchID", id))
	return nil
}

// UpdateScore sets the score of a live match. Nil sides are left unchanged
// and unknown ids are ignored.
func (s *Service) UpdateScore(ctx context.Context, id int, homeScore, awayScore *int) error {
	if err := s.registry.UpdateScore(ctx, &model.Match{ID: id}, homeScore, awayScore); err != nil {
		return err
	}
	s.logger.Debug(ctx, "score updated", logger.Int("matchID", id))
	return nil
}

// Summary returns ranked live matches. A limit of zero returns all of them.
func (s *Service) Summary(ctx context.Context, limit int) ([]types.SummaryEntry, error) {
	if limit == 0 {
		return types.Ranked(s.registry.Summary(ctx)), nil
	}
	matches, err := s.registry.TopN(ctx, limit)
	if err != nil {
		return nil, err
	}
	return types.Ranked(matches), nil
}

// Matches returns live matches in the order they started.
func (s *Service) Matches(ctx context.Context) []types.MatchView {
	matches := s.registry.Matches(ctx)
	out := make([]types.MatchView, len(matches))
	for i, m := range matches {
		out[i] = types.FromMatch(m)
	}
	return out
}

// Match returns a single live match with its summary rank.
func (s *Service) Match(ctx context.Context, id int) (types.SummaryEntry, error) {
	m, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.SummaryEntry{}, err
	}
	rank, err := s.registry.Rank(ctx, id)
	if err != nil {
		return types.SummaryEntry{}, err
	}
	return types.SummaryEntry{Rank: rank, MatchView: types.FromMatch(m)}, nil
}

// SeenAndRecord reports whether the event id was already seen, recording it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord forgets an event id so the event can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered event ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue routes a score event to its match partition. It returns ErrQueueFull
// when the partition has no room and ErrStopped once the service is stopped.
func (s *Service) Enqueue(ctx context.Context, e model.ScoreEvent) error { //nolint:gocritic // hugeParam: events are queued by value
	q := s.partition(e.MatchID)
	if !q.Enqueue(ctx, e) {
		err, reason := ErrQueueFull, "backpressure"
		if q.IsClosed() {
			err, reason = ErrStopped, "stopped"
		}
		metrics.RecordEventRejected(reason)
		s.logger.Warn(ctx, "score event rejected",
			logger.String("eventID", e.EventID),
			logger.Int("matchID", e.MatchID),
			logger.String("reason", reason),
		)
		return err
	}

	metrics.RecordEventAccepted()
	metrics.UpdateQueueSize(s.queueLen(ctx))
	s.logger.Debug(ctx, "score event queued",
		logger.String("eventID", e.EventID),
		logger.Int("matchID", e.MatchID),
		logger.String("partition", q.Name()),
	)
	return nil
}

// partition keeps every event of one match on the same queue, hence the same worker.
func (s *Service) partition(matchID int) *queue.InMemoryQueue {
	i := matchID % len(s.queues)
	if i < 0 {
		i = -i
	}
	return s.queues[i]
}

func (s *Service) queueLen(ctx context.Context) int {
	n := 0
	for _, q := range s.queues {
		n += q.Len(ctx)
	}
	return n
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	queueLen := s.queueLen(ctx)
	live := s.registry.Count(ctx)

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"queueLength":   queueLen,
		"liveMatches":   live,
		"dedupeEntries": s.deduper.Size(),
	}
	if s.pool != nil {
		stats["eventsApplied"] = s.pool.Processed()
		stats["eventsFailed"] = s.pool.Failed()
	}

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateLiveMatches(live)
	return stats
}
