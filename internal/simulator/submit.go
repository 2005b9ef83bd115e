package simulator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scoreboard/pkg/logger"
)

const (
	maxSubmitAttempts = 20
	retryBackoff      = 10 * time.Millisecond
)

// submitEvents sends every plan's events. Each worker owns a fixed set of
// matches and sends their events one at a time, so the events of one match
// reach the server in order.
func submitEvents(ctx context.Context, cfg *Config, c *Client, plans []plan, stats *Stats) {
	lg := logger.Get().Named("submit")

	var submitted, accepted, duplicate, retried, failed atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < len(plans); i += cfg.Workers {
				for _, ev := range plans[i].events {
					if ctx.Err() != nil {
						return
					}
					submitted.Add(1)
					switch res, retries := submitWithRetry(ctx, c, ev); res {
					case resultAccepted:
						accepted.Add(1)
						retried.Add(int64(retries))
					case resultDuplicate:
						duplicate.Add(1)
						retried.Add(int64(retries))
					default:
						failed.Add(1)
						lg.Warn(ctx, "event not delivered",
							logger.String("eventID", ev.EventID),
							logger.Int("matchID", ev.MatchID),
						)
					}
				}
			}
		}(w)
	}
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsAccepted = int(accepted.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsRetried = int(retried.Load())
	stats.EventsFailed = int(failed.Load())

	lg.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("retried", stats.EventsRetried),
		logger.Int("failed", stats.EventsFailed),
	)
}

// submitWithRetry resends on backpressure with a linear backoff.
func submitWithRetry(ctx context.Context, c *Client, ev Event) (submitResult, int) { //nolint:gocritic // hugeParam: events are small request bodies
	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		res, err := c.submitEvent(ctx, ev)
		if err != nil {
			logger.Get().Debug(ctx, "submit failed", logger.String("eventID", ev.EventID), logger.Error(err))
			return resultFailed, attempt
		}
		if res != resultBackpressure {
			return res, attempt
		}
		select {
		case <-ctx.Done():
			return resultFailed, attempt
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		}
	}
	return resultFailed, maxSubmitAttempts
}
