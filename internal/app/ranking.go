package app

import (
	"sort"

	"quizlink-service/internal/domain"
)

// Rank orders leaderboard entries by score percentage descending, breaking
// exact ties by most recent submission first. Entries with zero questions
// have no meaningful percentage and always rank below everything else.
// The input slice is not modified.
func Rank(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.Slice(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Percentage(), ranked[j].Percentage()
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Timestamp.After(ranked[j].Timestamp)
	})
	return ranked
}
