package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
)

// Section names one exportable part of a snapshot.
type Section string

const (
	SectionSynergy         Section = "synergy"
	SectionDecisions       Section = "decisions"
	SectionVariance        Section = "variance"
	SectionForecast        Section = "forecast"
	SectionMatchups        Section = "matchups"
	SectionRecommendations Section = "recommendations"
)

// Sections lists every exportable section.
func Sections() []Section {
	return []Section{
		SectionSynergy,
		SectionDecisions,
		SectionVariance,
		SectionForecast,
		SectionMatchups,
		SectionRecommendations,
	}
}

type SynergyRow struct {
	Card1           string  `csv:"card1" json:"card1"`
	Card2           string  `csv:"card2" json:"card2"`
	SynergyScore    float64 `csv:"synergy_score" json:"synergy_score"`
	Confidence      float64 `csv:"confidence" json:"confidence"`
	PairWinRate     float64 `csv:"pair_win_rate" json:"pair_win_rate"`
	ExpectedWinRate float64 `csv:"expected_win_rate" json:"expected_win_rate"`
	SampleSize      int     `csv:"sample_size" json:"sample_size"`
}

type DecisionRow struct {
	Turn              int     `csv:"turn" json:"turn"`
	Action            string  `csv:"action" json:"action"`
	WinRate           float64 `csv:"win_rate" json:"win_rate"`
	BaselineWinRate   float64 `csv:"baseline_win_rate" json:"baseline_win_rate"`
	WinRateDifference float64 `csv:"win_rate_difference" json:"win_rate_difference"`
	Significance      float64 `csv:"significance" json:"significance"`
	SampleSize        int     `csv:"sample_size" json:"sample_size"`
}

type VarianceRow struct {
	PlayerID          string  `csv:"player_id" json:"player_id"`
	PlayerName        string  `csv:"player_name" json:"player_name"`
	MatchCount        int     `csv:"match_count" json:"match_count"`
	OverallWinRate    float64 `csv:"overall_win_rate" json:"overall_win_rate"`
	OverallVariance   float64 `csv:"overall_variance" json:"overall_variance"`
	ConsistencyRating float64 `csv:"consistency_rating" json:"consistency_rating"`
	LongestWinStreak  int     `csv:"longest_win_streak" json:"longest_win_streak"`
	LongestLossStreak int     `csv:"longest_loss_streak" json:"longest_loss_streak"`
}

type ForecastRow struct {
	Archetype           string     `csv:"archetype" json:"archetype"`
	CurrentPercentage   float64    `csv:"current_percentage" json:"current_percentage"`
	PredictedPercentage float64    `csv:"predicted_percentage" json:"predicted_percentage"`
	PercentageChange    float64    `csv:"percentage_change" json:"percentage_change"`
	Trend               string     `csv:"trend" json:"trend"`
	Confidence          float64    `csv:"confidence" json:"confidence"`
	NextPeak            *time.Time `csv:"next_peak" json:"next_peak,omitempty"`
	NextTrough          *time.Time `csv:"next_trough" json:"next_trough,omitempty"`
}

// MatchupRow is one weakness or strength of one player.
type MatchupRow struct {
	PlayerID  string  `csv:"player_id" json:"player_id"`
	Kind      string  `csv:"kind" json:"kind"`
	Archetype string  `csv:"archetype" json:"archetype"`
	WinRate   float64 `csv:"win_rate" json:"win_rate"`
	Matches   int     `csv:"matches" json:"matches"`
	Wins      int     `csv:"wins" json:"wins"`
	Score     float64 `csv:"score" json:"score"`
}

type RecommendationRow struct {
	PlayerID string  `csv:"player_id" json:"player_id"`
	Type     string  `csv:"type" json:"type"`
	Priority float64 `csv:"priority" json:"priority"`
	Message  string  `csv:"message" json:"message"`
}

// Rows flattens one section of a snapshot into exportable rows. Per-player
// sections are ordered by player ID.
func Rows(snapshot *analytics.Snapshot, section Section) (any, error) {
	switch section {
	case SectionSynergy:
		rows := make([]SynergyRow, 0, len(snapshot.Synergies))
		for _, s := range snapshot.Synergies {
			rows = append(rows, SynergyRow{
				Card1:           s.Card1,
				Card2:           s.Card2,
				SynergyScore:    s.SynergyScore,
				Confidence:      s.Confidence,
				PairWinRate:     s.PairWinRate,
				ExpectedWinRate: s.ExpectedWinRate,
				SampleSize:      s.SampleSize,
			})
		}
		return rows, nil

	case SectionDecisions:
		rows := make([]DecisionRow, 0, len(snapshot.DecisionPoints))
		for _, d := range snapshot.DecisionPoints {
			rows = append(rows, DecisionRow{
				Turn:              d.Turn,
				Action:            d.Action.String(),
				WinRate:           d.WinRate,
				BaselineWinRate:   d.BaselineWinRate,
				WinRateDifference: d.WinRateDifference,
				Significance:      d.Significance,
				SampleSize:        d.SampleSize,
			})
		}
		return rows, nil

	case SectionVariance:
		rows := make([]VarianceRow, 0, len(snapshot.Variance))
		for _, v := range snapshot.Variance {
			rows = append(rows, VarianceRow{
				PlayerID:          v.PlayerID,
				PlayerName:        v.PlayerName,
				MatchCount:        v.MatchCount,
				OverallWinRate:    v.OverallWinRate,
				OverallVariance:   v.OverallVariance,
				ConsistencyRating: v.ConsistencyRating,
				LongestWinStreak:  v.Streaks.LongestWinStreak,
				LongestLossStreak: v.Streaks.LongestLossStreak,
			})
		}
		return rows, nil

	case SectionForecast:
		rows := make([]ForecastRow, 0, len(snapshot.Forecasts))
		for _, f := range snapshot.Forecasts {
			row := ForecastRow{
				Archetype:           f.Archetype,
				CurrentPercentage:   f.CurrentPercentage,
				PredictedPercentage: f.PredictedPercentage,
				PercentageChange:    f.PercentageChange,
				Trend:               string(f.Trend),
				Confidence:          f.Confidence,
			}
			if f.NextPeak != nil {
				row.NextPeak = &f.NextPeak.Date
			}
			if f.NextTrough != nil {
				row.NextTrough = &f.NextTrough.Date
			}
			rows = append(rows, row)
		}
		return rows, nil

	case SectionMatchups:
		rows := []MatchupRow{}
		for _, id := range sortedKeys(snapshot.Weaknesses) {
			profile := snapshot.Weaknesses[id]
			rows = appendMatchups(rows, id, "weakness", profile.Weaknesses)
			rows = appendMatchups(rows, id, "strength", profile.Strengths)
		}
		return rows, nil

	case SectionRecommendations:
		rows := []RecommendationRow{}
		for _, id := range sortedKeys(snapshot.Recommendations) {
			for _, r := range snapshot.Recommendations[id] {
				rows = append(rows, RecommendationRow{
					PlayerID: id,
					Type:     string(r.Type),
					Priority: r.Priority,
					Message:  r.Message,
				})
			}
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("unknown export section %q", section)
	}
}

func appendMatchups(rows []MatchupRow, playerID, kind string, matchups []analytics.Matchup) []MatchupRow {
	for _, m := range matchups {
		rows = append(rows, MatchupRow{
			PlayerID:  playerID,
			Kind:      kind,
			Archetype: m.Archetype,
			WinRate:   m.WinRate,
			Matches:   m.Matches,
			Wins:      m.Wins,
			Score:     m.Score,
		})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
