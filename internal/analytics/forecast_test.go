package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioCycle(t *testing.T) CyclePrediction {
	t.Helper()
	cycles := NewCycleDetector(DefaultParameters(), nil).Detect(scenarioSnapshots())
	require.Len(t, cycles, 1)
	return cycles[0]
}

func TestForecast_Sinusoid(t *testing.T) {
	cycle := scenarioCycle(t)

	tests := []struct {
		name      string
		at        time.Time
		predicted float64
		trend     Trend
	}{
		{
			name:      "At the last observation",
			at:        day(60),
			predicted: 17.5,
			trend:     TrendStable,
		},
		{
			name:      "Quarter cycle ahead",
			at:        day(60).Add(180 * time.Hour),
			predicted: 25,
			trend:     TrendStable,
		},
		{
			name:      "Three quarters ahead",
			at:        day(60).Add(540 * time.Hour),
			predicted: 10,
			trend:     TrendStable,
		},
		{
			name:      "Before the next trough",
			at:        day(50),
			predicted: 17.5 - 7.5*0.8660254037844386,
			trend:     TrendFalling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecasts := Forecast([]CyclePrediction{cycle}, tt.at, 0.5)
			require.Len(t, forecasts, 1)
			f := forecasts[0]
			assert.Equal(t, "Aggro", f.Archetype)
			assert.InDelta(t, 10, f.CurrentPercentage, 1e-9)
			assert.InDelta(t, tt.predicted, f.PredictedPercentage, 1e-9)
			assert.InDelta(t, tt.predicted-10, f.PercentageChange, 1e-9)
			assert.Equal(t, tt.trend, f.Trend)
			assert.Equal(t, cycle.NextPeak, f.NextPeak)
		})
	}
}

func TestForecast_MinConfidence(t *testing.T) {
	cycle := scenarioCycle(t)
	assert.Empty(t, Forecast([]CyclePrediction{cycle}, day(70), 0.6))
	assert.Len(t, Forecast([]CyclePrediction{cycle}, day(70), 0.51), 1)
}

func TestForecast_WithoutTroughsCarriesLastValue(t *testing.T) {
	cycle := scenarioCycle(t)
	cycle.Troughs = nil
	cycle.NextTrough = nil

	forecasts := Forecast([]CyclePrediction{cycle}, day(70), 0.5)
	require.Len(t, forecasts, 1)
	assert.Equal(t, 10.0, forecasts[0].PredictedPercentage)
	assert.Equal(t, 0.0, forecasts[0].PercentageChange)
	assert.Equal(t, TrendStable, forecasts[0].Trend)
}

func TestForecast_SortedByPrediction(t *testing.T) {
	low := scenarioCycle(t)
	low.Troughs = nil

	high := scenarioCycle(t)
	high.Archetype = "Control"

	tied := scenarioCycle(t)
	tied.Archetype = "Burn"
	tied.Troughs = nil

	forecasts := Forecast([]CyclePrediction{low, high, tied}, day(60).Add(180*time.Hour), 0.5)
	require.Len(t, forecasts, 3)
	assert.Equal(t, "Control", forecasts[0].Archetype)
	assert.Equal(t, "Aggro", forecasts[1].Archetype)
	assert.Equal(t, "Burn", forecasts[2].Archetype)
}

func TestTrendAt(t *testing.T) {
	at := day(100)
	tests := []struct {
		name       string
		nextPeak   *Projection
		nextTrough *Projection
		want       Trend
	}{
		{
			name:       "Peak comes first",
			nextPeak:   &Projection{Date: day(105), Value: 30},
			nextTrough: &Projection{Date: day(120), Value: 10},
			want:       TrendRising,
		},
		{
			name:       "Trough comes first",
			nextPeak:   &Projection{Date: day(120), Value: 30},
			nextTrough: &Projection{Date: day(105), Value: 10},
			want:       TrendFalling,
		},
		{
			name:       "Both in the past",
			nextPeak:   &Projection{Date: day(90), Value: 30},
			nextTrough: &Projection{Date: day(80), Value: 10},
			want:       TrendStable,
		},
		{
			name:     "Missing trough",
			nextPeak: &Projection{Date: day(105), Value: 30},
			want:     TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := CyclePrediction{NextPeak: tt.nextPeak, NextTrough: tt.nextTrough}
			assert.Equal(t, tt.want, trendAt(cycle, at))
		})
	}
}
