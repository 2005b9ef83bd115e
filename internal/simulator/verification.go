package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/logger"
)

const pollInterval = 50 * time.Millisecond

// waitForScores polls GET /matches until every match reports its final score.
func waitForScores(ctx context.Context, c *Client, finals map[int]model.Score, settle time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, settle)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	pending := len(finals)
	for {
		views, err := c.Matches(ctx)
		if err == nil {
			pending = len(finals)
			for _, v := range views {
				if f, ok := finals[v.ID]; ok && v.HomeScore == f.Home && v.AwayScore == f.Away {
					pending--
				}
			}
			if pending == 0 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%d matches did not reach their final score: %w", pending, ctx.Err())
		case <-ticker.C:
		}
	}
}

// verifySummary fetches /summary and compares it with the expected ranking.
func verifySummary(ctx context.Context, c *Client, finals map[int]model.Score, stats *Stats) error {
	summary, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	stats.SummaryEntries = len(summary)

	if err := compareSummary(summary, expectedOrder(finals), finals); err != nil {
		return err
	}
	stats.SummaryVerified = true
	logger.Get().Info(ctx, "summary verified", logger.Int("entries", len(summary)))
	return nil
}

// finishAll finishes every match twice, checking the second call is a no-op,
// and verifies the matches are gone from the board.
func finishAll(ctx context.Context, c *Client, finals map[int]model.Score, stats *Stats) error {
	for id := range finals {
		if err := c.FinishMatch(ctx, id); err != nil {
			return err
		}
		if err := c.FinishMatch(ctx, id); err != nil {
			return fmt.Errorf("second finish of match %d: %w", id, err)
		}
		stats.MatchesFinished++
	}

	for id := range finals {
		exists, err := c.MatchExists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("match %d still live after finish", id)
		}
	}

	summary, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	for _, e := range summary {
		if _, ok := finals[e.ID]; ok {
			return fmt.Errorf("finished match %d still in summary", e.ID)
		}
	}
	stats.FinishVerified = true
	logger.Get().Info(ctx, "finish verified", logger.Int("matches", stats.MatchesFinished))
	return nil
}
