// Package repository holds the live match registry and its ordering index.
package repository

import (
	"context"

	"github.com/okian/scoreboard/internal/domain/model"
)

// Store provides read/write access to the live matches.
type Store interface {
	// Start registers a new match at 0-0 and returns it.
	// Returns ErrInvalidArgument if either team is nil.
	Start(ctx context.Context, home, away *model.Team) (model.Match, error)

	// Finish removes the live match with match.ID. Finishing a match that is
	// not live is a no-op and returns nil.
	Finish(ctx context.Context, match *model.Match) error

	// UpdateScore overwrites the non-nil score components of the live match
	// with match.ID. Updating a match that is not live is a no-op and returns nil.
	UpdateScore(ctx context.Context, match *model.Match, homeScore, awayScore *int) error

	// Summary returns every live match ordered by total score desc, then id desc.
	Summary(ctx context.Context) []model.Match

	// TopN returns the first n entries of Summary.
	// Returns ErrInvalidLimit if n < 1.
	TopN(ctx context.Context, n int) ([]model.Match, error)

	// Matches returns the live matches in the order they were started.
	Matches(ctx context.Context) []model.Match

	// Get returns the live match with the given id or ErrNotFound.
	Get(ctx context.Context, id int) (model.Match, error)

	// Rank returns the 1-based summary position of the live match with the given id.
	// Returns ErrNotFound if the match is not live.
	Rank(ctx context.Context, id int) (int, error)

	// Count returns the number of live matches.
	Count(ctx context.Context) int
}
