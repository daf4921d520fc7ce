package analytics

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/stats"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// WindowStat holds the results of one rolling window. StartMatch and EndMatch
// are inclusive indexes into the player's chronologically sorted matches.
type WindowStat struct {
	StartMatch int     `json:"start_match" yaml:"start_match"`
	EndMatch   int     `json:"end_match" yaml:"end_match"`
	WinRate    float64 `json:"win_rate" yaml:"win_rate"`
	Variance   float64 `json:"variance" yaml:"variance"`
	StdDev     float64 `json:"std_dev" yaml:"std_dev"`
}

// ArchetypeUsage counts how often the player used an archetype within a set of windows.
type ArchetypeUsage struct {
	Archetype  string  `json:"archetype" yaml:"archetype"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// VarianceProfile describes how stable a player's results are over time.
type VarianceProfile struct {
	PlayerID               string            `json:"player_id" yaml:"player_id"`
	PlayerName             string            `json:"player_name" yaml:"player_name"`
	MatchCount             int               `json:"match_count" yaml:"match_count"`
	RollingStats           []WindowStat      `json:"rolling_stats" yaml:"rolling_stats"`
	OverallWinRate         float64           `json:"overall_win_rate" yaml:"overall_win_rate"`
	OverallVariance        float64           `json:"overall_variance" yaml:"overall_variance"`
	OverallStdDev          float64           `json:"overall_std_dev" yaml:"overall_std_dev"`
	ConsistencyRating      float64           `json:"consistency_rating" yaml:"consistency_rating"`
	VariabilityRating      float64           `json:"variability_rating" yaml:"variability_rating"`
	HighVariancePeriods    []WindowStat      `json:"high_variance_periods" yaml:"high_variance_periods"`
	LowVariancePeriods     []WindowStat      `json:"low_variance_periods" yaml:"low_variance_periods"`
	HighVarianceArchetypes []ArchetypeUsage  `json:"high_variance_archetypes" yaml:"high_variance_archetypes"`
	LowVarianceArchetypes  []ArchetypeUsage  `json:"low_variance_archetypes" yaml:"low_variance_archetypes"`
	Streaks                stats.StreakStats `json:"streaks" yaml:"streaks"`
}

// VarianceAnalyzer profiles the consistency of player results over a rolling window.
type VarianceAnalyzer struct {
	params Parameters
	logger *logrus.Entry
}

// NewVarianceAnalyzer creates a new variance analyzer.
func NewVarianceAnalyzer(params Parameters, logger *logrus.Entry) *VarianceAnalyzer {
	return &VarianceAnalyzer{params: params, logger: orDiscard(logger)}
}

// Analyze profiles every player with enough matches, most consistent first.
func (a *VarianceAnalyzer) Analyze(players []models.Player, matches []models.Match) []VarianceProfile {
	byPlayer := indexMatchesByPlayer(matches)

	profiles := make([]VarianceProfile, 0, len(players))
	seen := make(map[string]bool, len(players))
	for _, player := range players {
		if seen[player.ID] {
			continue
		}
		seen[player.ID] = true

		if profile, ok := a.Profile(player, byPlayer[player.ID]); ok {
			profiles = append(profiles, profile)
		}
	}

	SortVarianceProfiles(profiles)

	a.logger.WithFields(logrus.Fields{
		"players":  len(players),
		"profiles": len(profiles),
	}).Debug("Performance variance analysis complete")

	return profiles
}

// Profile builds the variance profile for a single player. Matches the player
// did not take part in are ignored. ok is false when the player has fewer
// matches than the window size.
func (a *VarianceAnalyzer) Profile(player models.Player, matches []models.Match) (VarianceProfile, bool) {
	played := playerMatches(player.ID, matches)
	if len(played) < a.params.VarianceWindowSize || len(played) == 0 {
		return VarianceProfile{}, false
	}

	sortChronologically(played)

	outcomes := outcomesOf(played)
	results := make([]float64, len(outcomes))
	for i, o := range outcomes {
		if o == stats.Win {
			results[i] = 1
		}
	}

	windowSize := a.params.VarianceWindowSize
	if windowSize > len(played) {
		windowSize = len(played)
	}

	rolling := make([]WindowStat, 0, len(played)-windowSize+1)
	for start := 0; start+windowSize <= len(played); start++ {
		window := results[start : start+windowSize]
		variance := stats.PopVariance(window)
		rolling = append(rolling, WindowStat{
			StartMatch: start,
			EndMatch:   start + windowSize - 1,
			WinRate:    stats.Mean(window),
			Variance:   variance,
			StdDev:     math.Sqrt(variance),
		})
	}

	winRates := make([]float64, len(rolling))
	variances := make([]float64, len(rolling))
	var high, low []WindowStat
	for i, w := range rolling {
		winRates[i] = w.WinRate
		variances[i] = w.Variance
		if w.Variance > a.params.HighVarianceThreshold {
			high = append(high, w)
		}
		if w.Variance < a.params.LowVarianceThreshold {
			low = append(low, w)
		}
	}

	overallVariance := stats.Mean(variances)

	return VarianceProfile{
		PlayerID:               player.ID,
		PlayerName:             player.Name,
		MatchCount:             len(played),
		RollingStats:           rolling,
		OverallWinRate:         stats.Mean(winRates),
		OverallVariance:        overallVariance,
		OverallStdDev:          math.Sqrt(overallVariance),
		ConsistencyRating:      1 - overallVariance,
		VariabilityRating:      overallVariance,
		HighVariancePeriods:    nonNilWindows(high),
		LowVariancePeriods:     nonNilWindows(low),
		HighVarianceArchetypes: archetypeUsage(played, high),
		LowVarianceArchetypes:  archetypeUsage(played, low),
		Streaks:                stats.CalculateStreaks(outcomes),
	}, true
}

// SortVarianceProfiles orders profiles by consistency, highest first.
func SortVarianceProfiles(profiles []VarianceProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].ConsistencyRating != profiles[j].ConsistencyRating {
			return profiles[i].ConsistencyRating > profiles[j].ConsistencyRating
		}
		return profiles[i].PlayerID < profiles[j].PlayerID
	})
}

// archetypeUsage counts the player's own archetypes across the matches of
// the given windows. Matches in overlapping windows are counted once per window.
func archetypeUsage(played []playerMatch, windows []WindowStat) []ArchetypeUsage {
	usage := make([]ArchetypeUsage, 0)
	if len(windows) == 0 {
		return usage
	}

	counts := make(map[string]int)
	total := 0
	for _, w := range windows {
		for i := w.StartMatch; i <= w.EndMatch && i < len(played); i++ {
			total++
			if archetype := played[i].own().Archetype; archetype != "" {
				counts[archetype]++
			}
		}
	}

	for archetype, count := range counts {
		usage = append(usage, ArchetypeUsage{
			Archetype:  archetype,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Archetype < usage[j].Archetype
	})
	return usage
}

func nonNilWindows(w []WindowStat) []WindowStat {
	if w == nil {
		return []WindowStat{}
	}
	return w
}
