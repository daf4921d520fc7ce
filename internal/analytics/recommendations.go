package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// RecommendationType classifies an improvement recommendation.
type RecommendationType string

const (
	RecommendMatchup     RecommendationType = "matchup"
	RecommendPlayPattern RecommendationType = "playPattern"
	RecommendConsistency RecommendationType = "consistency"
)

const (
	consistencyVariabilityFloor = 0.2
	consistencyPriorityFactor   = 5
)

// Recommendation is a prioritized suggestion for a player. Only the fields
// relevant to its Type are set.
type Recommendation struct {
	Type                RecommendationType `json:"type" yaml:"type"`
	Priority            float64            `json:"priority" yaml:"priority"`
	Message             string             `json:"message" yaml:"message"`
	Archetype           string             `json:"archetype,omitempty" yaml:"archetype,omitempty"`
	Turn                int                `json:"turn,omitempty" yaml:"turn,omitempty"`
	Action              *ActionKey         `json:"action,omitempty" yaml:"action,omitempty"`
	WinRate             float64            `json:"win_rate,omitempty" yaml:"win_rate,omitempty"`
	Variability         float64            `json:"variability,omitempty" yaml:"variability,omitempty"`
	SuggestedArchetypes []string           `json:"suggested_archetypes,omitempty" yaml:"suggested_archetypes,omitempty"`
}

// Improvements turns a weakness profile and an optional variance profile into
// recommendations, highest priority first. Either profile may be nil.
func Improvements(profile *WeaknessProfile, variance *VarianceProfile) []Recommendation {
	recs := make([]Recommendation, 0)

	if profile != nil {
		for _, w := range profile.Weaknesses {
			recs = append(recs, Recommendation{
				Type:      RecommendMatchup,
				Priority:  w.Score,
				Archetype: w.Archetype,
				WinRate:   w.WinRate,
				Message: fmt.Sprintf("Practice against %s decks to improve your %.1f%% win rate in this matchup.",
					w.Archetype, w.WinRate*100),
			})
		}

		for _, p := range profile.PlayPatternWeaknesses {
			action := p.Action
			recs = append(recs, Recommendation{
				Type:     RecommendPlayPattern,
				Priority: p.Severity,
				Turn:     p.Turn,
				Action:   &action,
				WinRate:  p.WinRate,
				Message: fmt.Sprintf("Reconsider your strategy when playing %s on turn %d. This play pattern has only a %.1f%% win rate.",
					describeAction(action), p.Turn, p.WinRate*100),
			})
		}
	}

	if variance != nil && variance.VariabilityRating > consistencyVariabilityFloor {
		suggested := make([]string, 0, len(variance.LowVarianceArchetypes))
		for _, usage := range variance.LowVarianceArchetypes {
			suggested = append(suggested, usage.Archetype)
		}

		msg := fmt.Sprintf("Your performance is highly variable (%.1f%% variance).", variance.VariabilityRating*100)
		if len(suggested) > 0 {
			msg += fmt.Sprintf(" Consider using more consistent decks like %s.", strings.Join(suggested, ", "))
		} else {
			msg += " Consider using a more consistent deck."
		}

		recs = append(recs, Recommendation{
			Type:                RecommendConsistency,
			Priority:            variance.VariabilityRating * consistencyPriorityFactor,
			Variability:         variance.VariabilityRating,
			SuggestedArchetypes: suggested,
			Message:             msg,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		if recs[i].Type != recs[j].Type {
			return recs[i].Type < recs[j].Type
		}
		return recs[i].Archetype < recs[j].Archetype
	})

	return recs
}

func describeAction(k ActionKey) string {
	if k.Target == "" {
		return k.Type
	}
	return k.Type + " targeting " + k.Target
}
