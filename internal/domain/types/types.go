// Package types contains common types used across the application
package types

import "github.com/okian/scoreboard/internal/domain/model"

// MatchView is the read shape of a live match.
type MatchView struct {
	ID         int    `json:"id"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
	TotalScore int    `json:"total_score"`
}

// SummaryEntry is a match with its 1-based position in the summary.
type SummaryEntry struct {
	Rank int `json:"rank"`
	MatchView
}

// FromMatch converts a stored match to its read shape.
func FromMatch(m model.Match) MatchView { //nolint:gocritic // hugeParam: matches are copied out of the registry
	return MatchView{
		ID:         m.ID,
		HomeTeam:   m.HomeTeam.Name,
		AwayTeam:   m.AwayTeam.Name,
		HomeScore:  m.Score.Home,
		AwayScore:  m.Score.Away,
		TotalScore: m.Score.Total(),
	}
}

// Ranked converts matches already in summary order to summary entries.
func Ranked(matches []model.Match) []SummaryEntry {
	out := make([]SummaryEntry, len(matches))
	for i, m := range matches {
		out[i] = SummaryEntry{Rank: i + 1, MatchView: FromMatch(m)}
	}
	return out
}
