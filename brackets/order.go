package brackets

import (
	"sort"

	"github.com/Dosada05/esport-arena/models"
)

// SortForDisplay orders matches for listing: scheduled matches first, then by
// round and match number. Bracket type and id only break ties.
func SortForDisplay(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if (a.ScheduledAt != nil) != (b.ScheduledAt != nil) {
			return a.ScheduledAt != nil
		}
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		if a.MatchNumber != b.MatchNumber {
			return a.MatchNumber < b.MatchNumber
		}
		if bracketRank(a.BracketType) != bracketRank(b.BracketType) {
			return bracketRank(a.BracketType) < bracketRank(b.BracketType)
		}
		return a.ID.String() < b.ID.String()
	})
}

// IsSchedulable reports whether a date can be set on the match: both teams
// are known and it is not finished.
func IsSchedulable(m *models.Match) bool {
	return m.Team1ID != nil && m.Team2ID != nil && m.Status != models.MatchCompleted
}
