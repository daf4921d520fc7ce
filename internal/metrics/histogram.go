// Package metrics records timing and volume statistics for analysis runs.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Histogram tracks a distribution of duration values and calculates percentiles.
type Histogram struct {
	samples []float64 // duration in milliseconds
	mu      sync.RWMutex
	maxSize int
}

// NewHistogram creates a new histogram with a maximum sample size.
// When maxSize is exceeded, the oldest samples are dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a duration sample to the histogram.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)

	if len(h.samples) > h.maxSize {
		// Drop the oldest 20% at once to avoid trimming on every call
		h.samples = h.samples[h.maxSize/5:]
	}
}

// Time records the duration since start.
func (h *Histogram) Time(start time.Time) {
	h.Record(time.Since(start))
}

// Mean returns the average duration in milliseconds.
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	return stat.Mean(h.samples, nil)
}

// Percentile returns the value at the given percentile (0-100),
// linearly interpolated between the two samples around the fractional rank.
func (h *Histogram) Percentile(p float64) float64 {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return 0
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// Min returns the minimum value.
func (h *Histogram) Min() float64 {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[0]
}

// Max returns the maximum value.
func (h *Histogram) Max() float64 {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

// Count returns the number of retained samples.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Reset clears all samples.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

func (h *Histogram) sorted() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sorted := make([]float64, len(h.samples))
	copy(sorted, h.samples)
	sort.Float64s(sorted)
	return sorted
}
