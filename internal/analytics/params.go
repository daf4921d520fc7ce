package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned when analysis parameters fail validation.
var ErrInvalidParameters = errors.New("invalid analysis parameters")

// Parameters holds the thresholds and sample floors used by every analyzer.
type Parameters struct {
	// Card synergy
	MinSynergyConfidence float64 `toml:"min_synergy_confidence" env:"MIN_SYNERGY_CONFIDENCE"`
	MinSynergySupport    int     `toml:"min_synergy_support" env:"MIN_SYNERGY_SUPPORT"`

	// Decision points
	SignificantWinrateChange float64 `toml:"significant_winrate_change" env:"SIGNIFICANT_WINRATE_CHANGE"`
	MinDecisionSamples       int     `toml:"min_decision_samples" env:"MIN_DECISION_SAMPLES"`

	// Performance variance
	VarianceWindowSize    int     `toml:"variance_window_size" env:"VARIANCE_WINDOW_SIZE"`
	HighVarianceThreshold float64 `toml:"high_variance_threshold" env:"HIGH_VARIANCE_THRESHOLD"`
	LowVarianceThreshold  float64 `toml:"low_variance_threshold" env:"LOW_VARIANCE_THRESHOLD"`

	// Metagame cycles, in days
	MinCycleLength        float64 `toml:"min_cycle_length" env:"MIN_CYCLE_LENGTH"`
	MaxCycleLength        float64 `toml:"max_cycle_length" env:"MAX_CYCLE_LENGTH"`
	ForecastMinConfidence float64 `toml:"forecast_min_confidence" env:"FORECAST_MIN_CONFIDENCE"`

	// Weakness detection
	WeaknessThreshold     float64 `toml:"weakness_threshold" env:"WEAKNESS_THRESHOLD"`
	StrengthThreshold     float64 `toml:"strength_threshold" env:"STRENGTH_THRESHOLD"`
	MinMatchesForWeakness int     `toml:"min_matches_for_weakness" env:"MIN_MATCHES_FOR_WEAKNESS"`
	MinProfileMatches     int     `toml:"min_profile_matches" env:"MIN_PROFILE_MATCHES"`
}

// DefaultParameters returns the default analysis parameters.
func DefaultParameters() Parameters {
	return Parameters{
		MinSynergyConfidence:     0.6,
		MinSynergySupport:        5,
		SignificantWinrateChange: 0.15,
		MinDecisionSamples:       10,
		VarianceWindowSize:       20,
		HighVarianceThreshold:    0.2,
		LowVarianceThreshold:     0.05,
		MinCycleLength:           14,
		MaxCycleLength:           60,
		ForecastMinConfidence:    0.5,
		WeaknessThreshold:        0.4,
		StrengthThreshold:        0.6,
		MinMatchesForWeakness:    5,
		MinProfileMatches:        10,
	}
}

// Validate checks that the parameters describe a usable configuration.
func (p Parameters) Validate() error {
	var errs []error

	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", name, v))
		}
	}

	unit("min_synergy_confidence", p.MinSynergyConfidence)
	unit("significant_winrate_change", p.SignificantWinrateChange)
	unit("high_variance_threshold", p.HighVarianceThreshold)
	unit("low_variance_threshold", p.LowVarianceThreshold)
	unit("forecast_min_confidence", p.ForecastMinConfidence)
	unit("weakness_threshold", p.WeaknessThreshold)
	unit("strength_threshold", p.StrengthThreshold)

	positive("min_synergy_support", p.MinSynergySupport)
	positive("min_decision_samples", p.MinDecisionSamples)
	positive("variance_window_size", p.VarianceWindowSize)
	positive("min_matches_for_weakness", p.MinMatchesForWeakness)
	positive("min_profile_matches", p.MinProfileMatches)

	if p.LowVarianceThreshold > p.HighVarianceThreshold {
		errs = append(errs, fmt.Errorf("low_variance_threshold (%v) exceeds high_variance_threshold (%v)",
			p.LowVarianceThreshold, p.HighVarianceThreshold))
	}
	if p.MinCycleLength <= 0 {
		errs = append(errs, fmt.Errorf("min_cycle_length must be positive, got %v", p.MinCycleLength))
	}
	if p.MaxCycleLength < p.MinCycleLength {
		errs = append(errs, fmt.Errorf("max_cycle_length (%v) is below min_cycle_length (%v)",
			p.MaxCycleLength, p.MinCycleLength))
	}
	if p.WeaknessThreshold > p.StrengthThreshold {
		errs = append(errs, fmt.Errorf("weakness_threshold (%v) exceeds strength_threshold (%v)",
			p.WeaknessThreshold, p.StrengthThreshold))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, errors.Join(errs...))
	}
	return nil
}

// Features toggles individual analyzers. A disabled analyzer returns empty results.
type Features struct {
	CardSynergy         bool `toml:"card_synergy" env:"CARD_SYNERGY"`
	DecisionPoints      bool `toml:"decision_points" env:"DECISION_POINTS"`
	PerformanceVariance bool `toml:"performance_variance" env:"PERFORMANCE_VARIANCE"`
	MetagameCycles      bool `toml:"metagame_cycles" env:"METAGAME_CYCLES"`
	PlayerWeaknesses    bool `toml:"player_weaknesses" env:"PLAYER_WEAKNESSES"`
}

// AllFeatures enables every analyzer.
func AllFeatures() Features {
	return Features{
		CardSynergy:         true,
		DecisionPoints:      true,
		PerformanceVariance: true,
		MetagameCycles:      true,
		PlayerWeaknesses:    true,
	}
}
