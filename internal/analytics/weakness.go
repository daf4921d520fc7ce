package analytics

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// Matchup is a player's record against one opposing archetype. Score is the
// severity of a weakness or the magnitude of a strength.
type Matchup struct {
	Archetype         string  `json:"archetype" yaml:"archetype"`
	WinRate           float64 `json:"win_rate" yaml:"win_rate"`
	WinRateDifference float64 `json:"win_rate_difference" yaml:"win_rate_difference"` // relative to the player's overall win rate
	Matches           int     `json:"matches" yaml:"matches"`
	Wins              int     `json:"wins" yaml:"wins"`
	Score             float64 `json:"score" yaml:"score"`
}

// PatternWeakness is a play on a given turn that tends to precede losses.
type PatternWeakness struct {
	Turn     int       `json:"turn" yaml:"turn"`
	Action   ActionKey `json:"action" yaml:"action"`
	WinRate  float64   `json:"win_rate" yaml:"win_rate"`
	Matches  int       `json:"matches" yaml:"matches"`
	Wins     int       `json:"wins" yaml:"wins"`
	Severity float64   `json:"severity" yaml:"severity"`
}

// WeaknessProfile summarizes where a player over- and under-performs.
type WeaknessProfile struct {
	PlayerID              string            `json:"player_id" yaml:"player_id"`
	PlayerName            string            `json:"player_name" yaml:"player_name"`
	MatchCount            int               `json:"match_count" yaml:"match_count"`
	OverallWinRate        float64           `json:"overall_win_rate" yaml:"overall_win_rate"`
	Weaknesses            []Matchup         `json:"weaknesses" yaml:"weaknesses"`
	Strengths             []Matchup         `json:"strengths" yaml:"strengths"`
	PlayPatternWeaknesses []PatternWeakness `json:"play_pattern_weaknesses" yaml:"play_pattern_weaknesses"`
}

// Empty reports whether the profile holds no findings.
func (p WeaknessProfile) Empty() bool {
	return len(p.Weaknesses) == 0 && len(p.Strengths) == 0 && len(p.PlayPatternWeaknesses) == 0
}

// WeaknessDetector finds matchups and play patterns where a player underperforms.
type WeaknessDetector struct {
	params Parameters
	logger *logrus.Entry
}

// NewWeaknessDetector creates a new weakness detector.
func NewWeaknessDetector(params Parameters, logger *logrus.Entry) *WeaknessDetector {
	return &WeaknessDetector{params: params, logger: orDiscard(logger)}
}

// Detect builds the weakness profile for one player. Players with too few
// matches get a profile with empty lists.
func (d *WeaknessDetector) Detect(player models.Player, matches []models.Match) WeaknessProfile {
	profile := WeaknessProfile{
		PlayerID:              player.ID,
		PlayerName:            player.Name,
		Weaknesses:            []Matchup{},
		Strengths:             []Matchup{},
		PlayPatternWeaknesses: []PatternWeakness{},
	}

	played := playerMatches(player.ID, matches)
	profile.MatchCount = len(played)
	if len(played) < d.params.MinProfileMatches || len(played) == 0 {
		return profile
	}

	var overall tally
	byArchetype := make(map[string]tally)
	for _, pm := range played {
		overall.matches++
		won := pm.won()
		if won {
			overall.wins++
		}

		archetype := pm.opponent().Archetype
		if archetype == "" {
			continue
		}
		t := byArchetype[archetype]
		t.matches++
		if won {
			t.wins++
		}
		byArchetype[archetype] = t
	}
	profile.OverallWinRate = overall.rate(0)

	for archetype, t := range byArchetype {
		if t.matches < d.params.MinMatchesForWeakness {
			continue
		}
		winRate := t.rate(0)
		matchup := Matchup{
			Archetype:         archetype,
			WinRate:           winRate,
			WinRateDifference: winRate - profile.OverallWinRate,
			Matches:           t.matches,
			Wins:              t.wins,
		}

		switch {
		case winRate < d.params.WeaknessThreshold:
			matchup.Score = (d.params.WeaknessThreshold - winRate) * math.Sqrt(float64(t.matches))
			profile.Weaknesses = append(profile.Weaknesses, matchup)
		case winRate > d.params.StrengthThreshold:
			matchup.Score = (winRate - d.params.StrengthThreshold) * math.Sqrt(float64(t.matches))
			profile.Strengths = append(profile.Strengths, matchup)
		}
	}
	sortMatchups(profile.Weaknesses)
	sortMatchups(profile.Strengths)

	profile.PlayPatternWeaknesses = d.patternWeaknesses(played)

	d.logger.WithFields(logrus.Fields{
		"player":     player.ID,
		"matches":    len(played),
		"weaknesses": len(profile.Weaknesses),
		"strengths":  len(profile.Strengths),
		"patterns":   len(profile.PlayPatternWeaknesses),
	}).Debug("Weakness detection complete")

	return profile
}

// patternWeaknesses groups the player's own turn actions by turn and action.
// A pattern counts once per match no matter how often it repeats.
func (d *WeaknessDetector) patternWeaknesses(played []playerMatch) []PatternWeakness {
	patterns := make(map[PatternKey]tally)
	for _, pm := range played {
		if len(pm.match.Turns) == 0 {
			continue
		}

		seen := make(map[PatternKey]bool)
		for i, turn := range pm.match.Turns {
			if turn.Side != pm.side {
				continue
			}
			for _, action := range turn.Actions {
				if action.Type == "" {
					continue
				}
				key := PatternKey{Turn: i + 1, Action: actionKeyOf(action)}
				if seen[key] {
					continue
				}
				seen[key] = true

				t := patterns[key]
				t.matches++
				if pm.won() {
					t.wins++
				}
				patterns[key] = t
			}
		}
	}

	weak := make([]PatternWeakness, 0)
	for key, t := range patterns {
		if t.matches < d.params.MinMatchesForWeakness {
			continue
		}
		winRate := t.rate(0)
		if winRate >= d.params.WeaknessThreshold {
			continue
		}
		weak = append(weak, PatternWeakness{
			Turn:     key.Turn,
			Action:   key.Action,
			WinRate:  winRate,
			Matches:  t.matches,
			Wins:     t.wins,
			Severity: (d.params.WeaknessThreshold - winRate) * math.Sqrt(float64(t.matches)),
		})
	}

	sort.Slice(weak, func(i, j int) bool {
		if weak[i].Severity != weak[j].Severity {
			return weak[i].Severity > weak[j].Severity
		}
		return PatternKey{Turn: weak[i].Turn, Action: weak[i].Action}.less(
			PatternKey{Turn: weak[j].Turn, Action: weak[j].Action})
	})
	return weak
}

func sortMatchups(m []Matchup) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Score != m[j].Score {
			return m[i].Score > m[j].Score
		}
		return m[i].Archetype < m[j].Archetype
	})
}
