package analytics

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// DecisionPoint is a turn and action whose presence shifts the acting side's
// win rate away from the baseline for games of the same length.
type DecisionPoint struct {
	GameLength        int       `json:"game_length" yaml:"game_length"`
	Turn              int       `json:"turn" yaml:"turn"`
	Action            ActionKey `json:"action" yaml:"action"`
	WinRate           float64   `json:"win_rate" yaml:"win_rate"`
	BaselineWinRate   float64   `json:"baseline_win_rate" yaml:"baseline_win_rate"`
	WinRateDifference float64   `json:"win_rate_difference" yaml:"win_rate_difference"`
	Significance      float64   `json:"significance" yaml:"significance"`
	IsPositive        bool      `json:"is_positive" yaml:"is_positive"`
	SampleSize        int       `json:"sample_size" yaml:"sample_size"`
}

// DecisionPointAnalyzer finds turn actions that correlate with winning or losing.
type DecisionPointAnalyzer struct {
	params Parameters
	logger *logrus.Entry
}

// NewDecisionPointAnalyzer creates a new decision point analyzer.
func NewDecisionPointAnalyzer(params Parameters, logger *logrus.Entry) *DecisionPointAnalyzer {
	return &DecisionPointAnalyzer{params: params, logger: orDiscard(logger)}
}

// Analyze returns decision points sorted by significance, highest first.
// Only decisive matches with turn logs take part: pending matches and draws
// are excluded from every numerator and denominator.
func (a *DecisionPointAnalyzer) Analyze(matches []models.Match) []DecisionPoint {
	buckets := make(map[int][]*models.Match)
	skipped := 0
	for i := range matches {
		match := &matches[i]
		if len(match.Turns) == 0 {
			skipped++
			continue
		}
		if _, decisive := match.Winner(); !decisive {
			continue
		}
		buckets[len(match.Turns)] = append(buckets[len(match.Turns)], match)
	}

	points := make([]DecisionPoint, 0)
	for length, bucket := range buckets {
		if len(bucket) < a.params.MinDecisionSamples {
			continue
		}
		points = append(points, a.analyzeBucket(length, bucket)...)
	}

	sort.Slice(points, func(i, j int) bool {
		pi, pj := points[i], points[j]
		if pi.Significance != pj.Significance {
			return pi.Significance > pj.Significance
		}
		if pi.GameLength != pj.GameLength {
			return pi.GameLength < pj.GameLength
		}
		if pi.Turn != pj.Turn {
			return pi.Turn < pj.Turn
		}
		return pi.Action.less(pj.Action)
	})

	a.logger.WithFields(logrus.Fields{
		"matches":          len(matches),
		"without_turn_log": skipped,
		"game_lengths":     len(buckets),
		"decision_points":  len(points),
	}).Debug("Decision point analysis complete")

	return points
}

// analyzeBucket compares every turn action in games of one length against
// the side-A baseline for that length.
func (a *DecisionPointAnalyzer) analyzeBucket(length int, bucket []*models.Match) []DecisionPoint {
	sideAWins := 0
	for _, match := range bucket {
		if match.Won(models.SideA) {
			sideAWins++
		}
	}
	baseline := float64(sideAWins) / float64(len(bucket))

	var points []DecisionPoint
	for turn := 1; turn <= length; turn++ {
		actions := make(map[ActionKey]tally)

		for _, match := range bucket {
			turnLog := match.Turns[turn-1]
			if !turnLog.Side.Valid() {
				continue
			}

			// Count each action once per match
			seen := make(map[ActionKey]bool, len(turnLog.Actions))
			for _, action := range turnLog.Actions {
				if action.Type == "" {
					continue
				}
				key := actionKeyOf(action)
				if seen[key] {
					continue
				}
				seen[key] = true

				t := actions[key]
				t.matches++
				if match.Won(turnLog.Side) {
					t.wins++
				}
				actions[key] = t
			}
		}

		for key, t := range actions {
			if t.matches < a.params.MinDecisionSamples {
				continue
			}

			winRate := t.rate(0.5)
			diff := math.Abs(winRate - baseline)
			if diff < a.params.SignificantWinrateChange {
				continue
			}

			points = append(points, DecisionPoint{
				GameLength:        length,
				Turn:              turn,
				Action:            key,
				WinRate:           winRate,
				BaselineWinRate:   baseline,
				WinRateDifference: diff,
				Significance:      diff * math.Sqrt(float64(t.matches)),
				IsPositive:        winRate > baseline,
				SampleSize:        t.matches,
			})
		}
	}

	return points
}
