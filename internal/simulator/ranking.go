package simulator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
)

// expectedOrder computes the summary order for the given final scores:
// total score descending, then most recently started first.
func expectedOrder(finals map[int]model.Score) []int {
	ids := make([]int, 0, len(finals))
	for id := range finals {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int) int {
		if c := cmp.Compare(finals[b].Total(), finals[a].Total()); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	return ids
}

// compareSummary checks the server summary against the expected order and
// scores. Matches the run did not start are skipped, so the check holds on a
// board shared with other clients.
func compareSummary(summary []types.SummaryEntry, want []int, finals map[int]model.Score) error {
	ours := make([]types.SummaryEntry, 0, len(want))
	for _, e := range summary {
		if _, ok := finals[e.ID]; ok {
			ours = append(ours, e)
		}
	}
	if len(ours) != len(want) {
		return fmt.Errorf("summary has %d of our matches, want %d", len(ours), len(want))
	}

	lastRank := 0
	for i, e := range ours {
		if e.ID != want[i] {
			return fmt.Errorf("summary position %d is match %d, want %d", i+1, e.ID, want[i])
		}
		if e.Rank <= lastRank {
			return fmt.Errorf("match %d reports rank %d after rank %d", e.ID, e.Rank, lastRank)
		}
		lastRank = e.Rank
		f := finals[e.ID]
		if e.HomeScore != f.Home || e.AwayScore != f.Away {
			return fmt.Errorf("match %d is %d-%d, want %d-%d", e.ID, e.HomeScore, e.AwayScore, f.Home, f.Away)
		}
	}
	return nil
}
