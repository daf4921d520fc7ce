package stats

// Outcome is the result of a single match from one player's point of view.
type Outcome int

const (
	Loss Outcome = iota
	Win
	Draw
)

// StreakStats summarizes consecutive results.
// CurrentStreak is positive for wins and negative for losses.
type StreakStats struct {
	CurrentStreak     int `json:"current_streak" yaml:"current_streak"`
	LongestWinStreak  int `json:"longest_win_streak" yaml:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak" yaml:"longest_loss_streak"`
}

// CalculateStreaks calculates win/loss streak statistics from a list of outcomes.
// Outcomes should be ordered oldest to newest for an accurate current streak.
func CalculateStreaks(outcomes []Outcome) StreakStats {
	var stats StreakStats
	currentWinStreak := 0
	currentLossStreak := 0

	for _, outcome := range outcomes {
		switch outcome {
		case Win:
			currentWinStreak++
			currentLossStreak = 0
			if currentWinStreak > stats.LongestWinStreak {
				stats.LongestWinStreak = currentWinStreak
			}

		case Loss:
			currentLossStreak++
			currentWinStreak = 0
			if currentLossStreak > stats.LongestLossStreak {
				stats.LongestLossStreak = currentLossStreak
			}

		default:
			// A draw breaks both streaks
			currentWinStreak = 0
			currentLossStreak = 0
		}
	}

	switch {
	case currentWinStreak > 0:
		stats.CurrentStreak = currentWinStreak
	case currentLossStreak > 0:
		stats.CurrentStreak = -currentLossStreak
	}

	return stats
}
