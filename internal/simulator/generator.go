package simulator

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
)

// fixtures are the pairings started by a run, repeated with a round suffix
// when more matches are requested.
var fixtures = [][2]string{ //nolint:gochecknoglobals // read-only fixture table
	{"Mexico", "Canada"},
	{"Spain", "Brazil"},
	{"Germany", "France"},
	{"Uruguay", "Italy"},
	{"Argentina", "Australia"},
	{"Netherlands", "Japan"},
	{"Portugal", "Morocco"},
	{"England", "Senegal"},
}

// pairing returns the home and away team for the i-th match of a run.
func pairing(i int) (home, away string) {
	f := fixtures[i%len(fixtures)]
	if round := i / len(fixtures); round > 0 {
		suffix := " " + strconv.Itoa(round+1)
		return f[0] + suffix, f[1] + suffix
	}
	return f[0], f[1]
}

// plan is the ordered event stream for one match and the score it ends on.
type plan struct {
	matchID int
	events  []Event
	final   model.Score
}

// generatePlans builds a goal-by-goal stream for every match. Each event
// carries the absolute score after the goal, so applying a match's events
// in order leaves it on final. A fraction of events is sent twice with the
// same id to exercise duplicate detection.
func generatePlans(matches []types.MatchView, goals int, duplicateRate float64, rng *rand.Rand) []plan {
	plans := make([]plan, 0, len(matches))
	for _, m := range matches {
		p := plan{matchID: m.ID, events: make([]Event, 0, goals)}
		for g := 0; g < goals; g++ {
			if rng.IntN(2) == 0 {
				p.final.Home++
			} else {
				p.final.Away++
			}
			ev := Event{
				EventID:   uuid.NewString(),
				MatchID:   m.ID,
				HomeScore: model.IntPtr(p.final.Home),
				AwayScore: model.IntPtr(p.final.Away),
				TS:        time.Now().UTC().Format(time.RFC3339),
			}
			p.events = append(p.events, ev)
			if rng.Float64() < duplicateRate {
				p.events = append(p.events, ev)
			}
		}
		plans = append(plans, p)
	}
	return plans
}

// countEvents returns the total number of events across plans.
func countEvents(plans []plan) int {
	n := 0
	for _, p := range plans {
		n += len(p.events)
	}
	return n
}
