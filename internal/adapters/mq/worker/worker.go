// Package worker applies queued score events to the match registry.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/scoreboard/internal/adapters/mq/queue"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
)

// Event is what workers read off the queue.
type Event = queue.Event

// Updater applies a score update to a live match.
type Updater interface {
	UpdateScore(ctx context.Context, match *model.Match, homeScore, awayScore *int) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events and writes score updates using the provided interfaces.
type Worker interface {
	// Run consumes events until the queue closes, ctx is cancelled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for Run to return.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker drains one queue in order.
type InMemoryWorker struct {
	queue   Queue
	updater Updater
	name    string

	processed atomic.Int64
	failed    atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Name returns the worker name.
func (w *InMemoryWorker) Name() string {
	return w.name
}

// Processed returns how many events this worker applied.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

// Failed returns how many events this worker could not apply.
func (w *InMemoryWorker) Failed() int64 {
	return w.failed.Load()
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without draining its queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent applies a single event. The match is addressed by id only;
// an event for a match that is no longer live is ignored by the registry.
func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.updater.UpdateScore(ctx, &model.Match{ID: event.MatchID}, event.HomeScore, event.AwayScore); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "update_error")
		return fmt.Errorf("apply event %s to match %d: %w", event.EventID, event.MatchID, err)
	}

	w.processed.Add(1)
	metrics.RecordWorkerProcessed()
	w.logger.Debug(ctx, "applied score event",
		logger.String("eventID", event.EventID),
		logger.Int("matchID", event.MatchID),
	)
	return nil
}

// Pool runs one worker per queue partition.
type Pool struct {
	workers []*InMemoryWorker
	queues  []Queue
	logger  logger.Logger
}

// NewPool creates a pool with a worker for each queue. opts are applied to every worker.
func NewPool(queues []Queue, updater Updater, opts ...Option) *Pool {
	p := &Pool{
		workers: make([]*InMemoryWorker, 0, len(queues)),
		queues:  queues,
	}

	for i, q := range queues {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers = append(p.workers, NewInMemoryWorker(q, updater, workerOpts...))
	}

	probe := &InMemoryWorker{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.logger == nil {
		probe.logger = logger.Get()
	}
	p.logger = probe.logger.Named("worker-pool")

	metrics.UpdateWorkerCount(len(p.workers))
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the total number of events applied by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns the total number of events that could not be applied.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queues and waits for the workers to drain them.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, q := range p.queues {
		if closer, ok := q.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	}

	var timedOut bool
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
	p.logger.Info(ctx, "worker pool stopped", logger.Int64("processed", p.Processed()))
	return nil
}
