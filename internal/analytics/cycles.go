package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/stats"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

const (
	minSnapshots       = 3
	minSeriesPoints    = 5
	fullConfidenceAt   = 5 // cycle count at which the count factor saturates
	cycleCountWeight   = 0.6
	cycleRegularWeight = 0.4
)

// SeriesPoint is an archetype's prevalence at one snapshot.
type SeriesPoint struct {
	Date       time.Time `json:"date" yaml:"date"`
	Percentage float64   `json:"percentage" yaml:"percentage"`
}

// Extremum is a local peak or trough in an archetype's prevalence series.
type Extremum struct {
	Index int       `json:"index" yaml:"index"`
	Date  time.Time `json:"date" yaml:"date"`
	Value float64   `json:"value" yaml:"value"`
}

// Projection is an expected future peak or trough.
type Projection struct {
	Date  time.Time `json:"date" yaml:"date"`
	Value float64   `json:"value" yaml:"value"`
}

// CyclePrediction describes a recurring rise and fall of one archetype.
type CyclePrediction struct {
	Archetype      string        `json:"archetype" yaml:"archetype"`
	Peaks          []Extremum    `json:"peaks" yaml:"peaks"`
	Troughs        []Extremum    `json:"troughs" yaml:"troughs"`
	CycleLengths   []float64     `json:"cycle_lengths" yaml:"cycle_lengths"` // days between consecutive peaks
	AvgCycleLength float64       `json:"avg_cycle_length" yaml:"avg_cycle_length"`
	Confidence     float64       `json:"confidence" yaml:"confidence"`
	NextPeak       *Projection   `json:"next_peak,omitempty" yaml:"next_peak,omitempty"`
	NextTrough     *Projection   `json:"next_trough,omitempty" yaml:"next_trough,omitempty"`
	DataPoints     []SeriesPoint `json:"data_points" yaml:"data_points"`
}

// CycleDetector finds cyclical archetypes in a metagame history.
type CycleDetector struct {
	params Parameters
	logger *logrus.Entry
}

// NewCycleDetector creates a new cycle detector.
func NewCycleDetector(params Parameters, logger *logrus.Entry) *CycleDetector {
	return &CycleDetector{params: params, logger: orDiscard(logger)}
}

// Detect returns the archetypes whose prevalence cycles within the configured
// length bounds, most confident first. Fewer than three snapshots yield nothing.
func (d *CycleDetector) Detect(snapshots []models.MetaSnapshot) []CyclePrediction {
	cycles := make([]CyclePrediction, 0)
	if len(snapshots) < minSnapshots {
		return cycles
	}

	series := archetypeSeries(snapshots)
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if cycle, ok := d.detectArchetype(name, series[name]); ok {
			cycles = append(cycles, cycle)
		}
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].Confidence > cycles[j].Confidence
	})

	d.logger.WithFields(logrus.Fields{
		"snapshots":  len(snapshots),
		"archetypes": len(series),
		"cyclical":   len(cycles),
	}).Debug("Metagame cycle detection complete")

	return cycles
}

func (d *CycleDetector) detectArchetype(name string, points []SeriesPoint) (CyclePrediction, bool) {
	if len(points) < minSeriesPoints {
		return CyclePrediction{}, false
	}

	peaks, troughs := findExtrema(points)

	lengths := make([]float64, 0, len(peaks))
	for i := 1; i < len(peaks); i++ {
		lengths = append(lengths, daysBetween(peaks[i-1].Date, peaks[i].Date))
	}
	if len(lengths) == 0 {
		return CyclePrediction{}, false
	}

	avg := stats.Mean(lengths)
	if avg < d.params.MinCycleLength || avg > d.params.MaxCycleLength {
		return CyclePrediction{}, false
	}

	cycle := CyclePrediction{
		Archetype:      name,
		Peaks:          peaks,
		Troughs:        troughs,
		CycleLengths:   lengths,
		AvgCycleLength: avg,
		Confidence:     cycleConfidence(lengths),
		DataPoints:     points,
	}
	if len(peaks) > 0 {
		last := peaks[len(peaks)-1]
		cycle.NextPeak = &Projection{Date: addDays(last.Date, avg), Value: last.Value}
	}
	if len(troughs) > 0 {
		last := troughs[len(troughs)-1]
		cycle.NextTrough = &Projection{Date: addDays(last.Date, avg), Value: last.Value}
	}

	return cycle, true
}

// archetypeSeries splits chronologically sorted snapshots into one series per archetype.
func archetypeSeries(snapshots []models.MetaSnapshot) map[string][]SeriesPoint {
	sorted := make([]models.MetaSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TakenAt.Before(sorted[j].TakenAt)
	})

	series := make(map[string][]SeriesPoint)
	for _, snapshot := range sorted {
		for _, share := range snapshot.Archetypes {
			if share.Name == "" {
				continue
			}
			series[share.Name] = append(series[share.Name], SeriesPoint{
				Date:       snapshot.TakenAt,
				Percentage: share.Percentage,
			})
		}
	}
	return series
}

// findExtrema marks strict local maxima and minima against both neighbors.
func findExtrema(points []SeriesPoint) (peaks, troughs []Extremum) {
	peaks = make([]Extremum, 0)
	troughs = make([]Extremum, 0)
	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1].Percentage, points[i].Percentage, points[i+1].Percentage
		switch {
		case curr > prev && curr > next:
			peaks = append(peaks, Extremum{Index: i, Date: points[i].Date, Value: curr})
		case curr < prev && curr < next:
			troughs = append(troughs, Extremum{Index: i, Date: points[i].Date, Value: curr})
		}
	}
	return peaks, troughs
}

// cycleConfidence rewards many cycles and regular cycle lengths.
func cycleConfidence(lengths []float64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	countFactor := math.Min(1, float64(len(lengths))/fullConfidenceAt)
	regularity := math.Max(0, 1-stats.CoefficientOfVariation(lengths))
	return stats.Clamp01(cycleCountWeight*countFactor + cycleRegularWeight*regularity)
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(24*time.Hour)))
}
