package analytics

import (
	"fmt"
	"time"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

// deckMatches plays deckID on side A against an anonymous opponent, winning
// the first `wins` of `total` matches.
func deckMatches(prefix, deckID string, total, wins int) []models.Match {
	matches := make([]models.Match, 0, total)
	for i := 0; i < total; i++ {
		result := models.ResultSideB
		if i < wins {
			result = models.ResultSideA
		}
		matches = append(matches, models.Match{
			ID:       fmt.Sprintf("%s-%02d", prefix, i),
			SideA:    models.Participant{PlayerID: "p-" + prefix, DeckID: deckID},
			SideB:    models.Participant{PlayerID: "opponent"},
			Result:   result,
			PlayedAt: day(i),
		})
	}
	return matches
}

// playerVs records matches of playerID against an archetype, winning the
// first `wins` of `total`.
func playerVs(playerID, archetype string, total, wins int) []models.Match {
	matches := make([]models.Match, 0, total)
	for i := 0; i < total; i++ {
		result := models.ResultSideB
		if i < wins {
			result = models.ResultSideA
		}
		matches = append(matches, models.Match{
			ID:       fmt.Sprintf("%s-%s-%02d", playerID, archetype, i),
			SideA:    models.Participant{PlayerID: playerID, Archetype: "Midrange"},
			SideB:    models.Participant{PlayerID: "opp-" + archetype, Archetype: archetype},
			Result:   result,
			PlayedAt: day(i),
		})
	}
	return matches
}

// alternating records n matches for playerID, winning every other one
// starting with a win.
func alternating(playerID string, n int) []models.Match {
	matches := make([]models.Match, 0, n)
	for i := 0; i < n; i++ {
		result := models.ResultSideB
		if i%2 == 0 {
			result = models.ResultSideA
		}
		matches = append(matches, models.Match{
			ID:       fmt.Sprintf("%s-alt-%02d", playerID, i),
			SideA:    models.Participant{PlayerID: playerID, Archetype: "Tempo"},
			SideB:    models.Participant{PlayerID: "rival", Archetype: "Control"},
			Result:   result,
			PlayedAt: day(i),
		})
	}
	return matches
}

func snapshots(name string, days []int, values []float64) []models.MetaSnapshot {
	out := make([]models.MetaSnapshot, len(days))
	for i := range days {
		out[i] = models.MetaSnapshot{
			TakenAt:    day(days[i]),
			Archetypes: []models.ArchetypeShare{{Name: name, Percentage: values[i]}},
		}
	}
	return out
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
