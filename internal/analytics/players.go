package analytics

import (
	"sort"

	"github.com/ramonehamilton/konivrer-insights/internal/stats"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// playerMatch is a match seen from one player's side.
type playerMatch struct {
	match *models.Match
	side  models.Side
}

func (pm playerMatch) won() bool {
	return pm.match.Won(pm.side)
}

func (pm playerMatch) own() models.Participant {
	return pm.match.Participant(pm.side)
}

func (pm playerMatch) opponent() models.Participant {
	return pm.match.Opponent(pm.side)
}

// playerMatches returns the non-pending matches the player took part in.
func playerMatches(playerID string, matches []models.Match) []playerMatch {
	played := make([]playerMatch, 0)
	for i := range matches {
		match := &matches[i]
		if match.IsPending() {
			continue
		}
		if side, ok := match.SideOf(playerID); ok {
			played = append(played, playerMatch{match: match, side: side})
		}
	}
	return played
}

// indexMatchesByPlayer groups matches by participating player so per-player
// analyses do not rescan the full history.
func indexMatchesByPlayer(matches []models.Match) map[string][]models.Match {
	index := make(map[string][]models.Match)
	for _, match := range matches {
		if match.SideA.PlayerID != "" {
			index[match.SideA.PlayerID] = append(index[match.SideA.PlayerID], match)
		}
		if match.SideB.PlayerID != "" && match.SideB.PlayerID != match.SideA.PlayerID {
			index[match.SideB.PlayerID] = append(index[match.SideB.PlayerID], match)
		}
	}
	return index
}

func sortChronologically(played []playerMatch) {
	sort.SliceStable(played, func(i, j int) bool {
		a, b := played[i].match, played[j].match
		if !a.PlayedAt.Equal(b.PlayedAt) {
			return a.PlayedAt.Before(b.PlayedAt)
		}
		return a.ID < b.ID
	})
}

func outcomesOf(played []playerMatch) []stats.Outcome {
	outcomes := make([]stats.Outcome, len(played))
	for i, pm := range played {
		switch {
		case pm.won():
			outcomes[i] = stats.Win
		case pm.match.IsDraw():
			outcomes[i] = stats.Draw
		default:
			outcomes[i] = stats.Loss
		}
	}
	return outcomes
}
