// Package simulator drives a running scoreboard over HTTP: it starts a
// fixture of matches, streams goal events, and checks the summary the server
// reports against one computed locally.
package simulator

import (
	"errors"
	"fmt"
	"time"
)

// Defaults used by the CLI flags.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultMatches       = 5
	DefaultGoals         = 12
	DefaultWorkers       = 4
	DefaultTimeout       = 10 * time.Second
	DefaultSettleTimeout = 30 * time.Second
	DefaultDuplicateRate = 0.1
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid simulator config")

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Matches       int           // Number of matches to start
	Goals         int           // Goals scored per match
	Workers       int           // Concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	SettleTimeout time.Duration // How long to wait for events to be applied
	DuplicateRate float64       // Fraction of events resent with the same id
	Finish        bool          // Finish every match at the end and verify removal
	Seed          uint64        // Seed for goal generation; 0 picks one from the clock
	Verbose       bool          // Enable verbose logging
}

// maxGoals matches the per-side score bound enforced by the server.
const maxGoals = 999

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Matches < 1:
		return fmt.Errorf("%w: matches must be positive", ErrInvalidConfig)
	case c.Goals < 0 || c.Goals > maxGoals:
		return fmt.Errorf("%w: goals must be within [0,%d]", ErrInvalidConfig, maxGoals)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.DuplicateRate < 0 || c.DuplicateRate > 1:
		return fmt.Errorf("%w: duplicate rate must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	MatchesStarted  int
	EventsGenerated int
	EventsSubmitted int
	EventsAccepted  int
	EventsDuplicate int
	EventsRetried   int
	EventsFailed    int
	SummaryEntries  int
	MatchesFinished int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	SummaryVerified bool
	FinishVerified  bool
}
