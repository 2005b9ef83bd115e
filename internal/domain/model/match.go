// Package model contains domain models passed between layers.
package model

// Team is a side of a match, identified only by its display name.
type Team struct {
	Name string
}

// Score is the running score pair of a match.
type Score struct {
	Home int
	Away int
}

// Total returns the combined number of goals.
func (s Score) Total() int {
	return s.Home + s.Away
}

// Match is a live game between two teams.
// ID is assigned by the registry and is the only thing lookups compare.
type Match struct {
	ID       int
	HomeTeam Team
	AwayTeam Team
	Score    Score
}

// SameAs reports whether m and other refer to the same match.
func (m Match) SameAs(other Match) bool {
	return m.ID == other.ID
}
