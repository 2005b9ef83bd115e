package model

import "time"

// ScoreEvent is a score update submitted through the async feed.
// A nil score field leaves that side of the score unchanged.
type ScoreEvent struct {
	EventID   string    // unique id for idempotency
	MatchID   int       // target match identifier
	HomeScore *int      // new home score, optional
	AwayScore *int      // new away score, optional
	TS        time.Time // event timestamp
}

// IntPtr returns a pointer to v. Handy for optional score fields.
func IntPtr(v int) *int {
	return &v
}
