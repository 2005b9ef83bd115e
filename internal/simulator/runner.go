package simulator

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
	"github.com/okian/scoreboard/pkg/logger"
)

// Run executes a complete simulation and writes a text report to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stats := &Stats{StartTime: time.Now()}
	lg := logger.Get().Named("simulator")
	c := NewClient(cfg.BaseURL, cfg.Timeout)

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	lg.Info(ctx, "starting scoreboard simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("goals", cfg.Goals),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", int64(seed)), //nolint:gosec // seed is only reported
	)

	// Step 1: Check service health
	if err := c.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Start matches
	matches := make([]types.MatchView, 0, cfg.Matches)
	for i := 0; i < cfg.Matches; i++ {
		home, away := pairing(i)
		m, err := c.StartMatch(ctx, home, away)
		if err != nil {
			return stats, fmt.Errorf("start match %s - %s: %w", home, away, err)
		}
		matches = append(matches, m)
	}
	stats.MatchesStarted = len(matches)

	// Step 3: Generate and submit events
	plans := generatePlans(matches, cfg.Goals, cfg.DuplicateRate, rng)
	stats.EventsGenerated = countEvents(plans)
	submitEvents(ctx, cfg, c, plans, stats)
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%d events could not be delivered", stats.EventsFailed)
	}

	finals := make(map[int]model.Score, len(plans))
	for _, p := range plans {
		finals[p.matchID] = p.final
	}

	// Step 4: Wait for processing
	if err := waitForScores(ctx, c, finals, cfg.SettleTimeout); err != nil {
		return stats, fmt.Errorf("waiting for scores: %w", err)
	}

	// Step 5: Verify the summary
	if err := verifySummary(ctx, c, finals, stats); err != nil {
		return stats, fmt.Errorf("summary verification failed: %w", err)
	}
	if err := writeBoard(ctx, c, out, finals); err != nil {
		lg.Warn(ctx, "failed to write board", logger.Error(err))
	}

	// Step 6: Finish matches
	if cfg.Finish {
		if err := finishAll(ctx, c, finals, stats); err != nil {
			return stats, fmt.Errorf("finish verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	writeReport(out, stats)

	lg.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// writeBoard prints the run's matches in summary order.
func writeBoard(ctx context.Context, c *Client, out io.Writer, finals map[int]model.Score) error {
	summary, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Summary")
	for _, e := range summary {
		if _, ok := finals[e.ID]; !ok {
			continue
		}
		fmt.Fprintf(out, "%3d. %s %d - %s %d\n", e.Rank, e.HomeTeam, e.HomeScore, e.AwayTeam, e.AwayScore)
	}
	return nil
}

// writeReport prints the final run statistics.
func writeReport(out io.Writer, stats *Stats) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	fmt.Fprintf(out, `
Run statistics
  Matches started:   %d
  Events generated:  %d
  Events accepted:   %d
  Events duplicate:  %d
  Events retried:    %d
  Summary verified:  %t
  Matches finished:  %d
  Duration:          %s
  Events per second: %.1f
`,
		stats.MatchesStarted,
		stats.EventsGenerated,
		stats.EventsAccepted,
		stats.EventsDuplicate,
		stats.EventsRetried,
		stats.SummaryVerified,
		stats.MatchesFinished,
		stats.Duration.Round(time.Millisecond),
		eventsPerSecond,
	)
}
