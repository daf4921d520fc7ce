package analytics

import (
	"math"
	"sort"
	"time"
)

// Trend is the expected direction of an archetype's prevalence.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// MetaForecast is the predicted prevalence of an archetype at a future date.
type MetaForecast struct {
	Archetype           string      `json:"archetype" yaml:"archetype"`
	CurrentPercentage   float64     `json:"current_percentage" yaml:"current_percentage"`
	PredictedPercentage float64     `json:"predicted_percentage" yaml:"predicted_percentage"`
	PercentageChange    float64     `json:"percentage_change" yaml:"percentage_change"`
	Trend               Trend       `json:"trend" yaml:"trend"`
	Confidence          float64     `json:"confidence" yaml:"confidence"`
	NextPeak            *Projection `json:"next_peak,omitempty" yaml:"next_peak,omitempty"`
	NextTrough          *Projection `json:"next_trough,omitempty" yaml:"next_trough,omitempty"`
}

// Forecast extrapolates each sufficiently confident cycle to the given date
// with a sinusoid fitted to its last peak and trough. Results are sorted by
// predicted percentage, highest first.
func Forecast(cycles []CyclePrediction, at time.Time, minConfidence float64) []MetaForecast {
	forecasts := make([]MetaForecast, 0, len(cycles))

	for _, cycle := range cycles {
		if cycle.Confidence < minConfidence || len(cycle.DataPoints) == 0 || cycle.AvgCycleLength <= 0 {
			continue
		}

		last := cycle.DataPoints[len(cycle.DataPoints)-1]
		predicted := last.Percentage

		if len(cycle.Peaks) > 0 && len(cycle.Troughs) > 0 {
			peak := cycle.Peaks[len(cycle.Peaks)-1]
			trough := cycle.Troughs[len(cycle.Troughs)-1]

			amplitude := (peak.Value - trough.Value) / 2
			baseline := (peak.Value + trough.Value) / 2
			position := math.Mod(daysBetween(last.Date, at), cycle.AvgCycleLength) / cycle.AvgCycleLength

			predicted = baseline + amplitude*math.Sin(2*math.Pi*position)
		}

		forecasts = append(forecasts, MetaForecast{
			Archetype:           cycle.Archetype,
			CurrentPercentage:   last.Percentage,
			PredictedPercentage: predicted,
			PercentageChange:    predicted - last.Percentage,
			Trend:               trendAt(cycle, at),
			Confidence:          cycle.Confidence,
			NextPeak:            cycle.NextPeak,
			NextTrough:          cycle.NextTrough,
		})
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		if forecasts[i].PredictedPercentage != forecasts[j].PredictedPercentage {
			return forecasts[i].PredictedPercentage > forecasts[j].PredictedPercentage
		}
		return forecasts[i].Archetype < forecasts[j].Archetype
	})

	return forecasts
}

// trendAt is rising when the next peak comes before the next trough and is
// still ahead of the given date, falling in the reverse case.
func trendAt(cycle CyclePrediction, at time.Time) Trend {
	if cycle.NextPeak == nil || cycle.NextTrough == nil {
		return TrendStable
	}

	toPeak := daysBetween(at, cycle.NextPeak.Date)
	toTrough := daysBetween(at, cycle.NextTrough.Date)

	switch {
	case toPeak < toTrough && toPeak > 0:
		return TrendRising
	case toTrough < toPeak && toTrough > 0:
		return TrendFalling
	default:
		return TrendStable
	}
}
