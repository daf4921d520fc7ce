package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Analysis names used to label latency histograms. Variance times a whole
// batch of players; VarianceProfile times one player inside a run.
const (
	Synergy         = "synergy"
	DecisionPoints  = "decision_points"
	Variance        = "variance"
	VarianceProfile = "variance_profile"
	Cycles          = "cycles"
	Weakness        = "weakness"
	Run             = "run"
)

var analysisNames = []string{Synergy, DecisionPoints, Variance, VarianceProfile, Cycles, Weakness, Run}

// AnalysisMetrics tracks performance metrics for analysis runs.
type AnalysisMetrics struct {
	latency map[string]*Histogram

	RunsCompleted  atomic.Uint64
	RunsFailed     atomic.Uint64
	RecordsEmitted atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// NewAnalysisMetrics creates a new metrics collector.
func NewAnalysisMetrics() *AnalysisMetrics {
	m := &AnalysisMetrics{
		latency:   make(map[string]*Histogram, len(analysisNames)),
		startTime: time.Now(),
	}
	for _, name := range analysisNames {
		m.latency[name] = NewHistogram(1000)
	}
	return m
}

// Observe records how long the named analysis took and how many records it produced.
// Unknown names are ignored.
func (m *AnalysisMetrics) Observe(name string, start time.Time, emitted int) {
	h, ok := m.latency[name]
	if !ok {
		return
	}
	h.Time(start)
	if emitted > 0 {
		m.RecordsEmitted.Add(uint64(emitted))
	}
}

// Latency returns the histogram for the named analysis, or nil.
func (m *AnalysisMetrics) Latency(name string) *Histogram {
	return m.latency[name]
}

// LatencyStats contains statistics for a latency histogram.
type LatencyStats struct {
	Mean  float64 `json:"mean" yaml:"mean"` // milliseconds
	P50   float64 `json:"p50" yaml:"p50"`
	P95   float64 `json:"p95" yaml:"p95"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
}

// Summary is a point-in-time view of the collected metrics.
type Summary struct {
	Latency        map[string]LatencyStats `json:"latency" yaml:"latency"`
	RunsCompleted  uint64                  `json:"runs_completed" yaml:"runs_completed"`
	RunsFailed     uint64                  `json:"runs_failed" yaml:"runs_failed"`
	RecordsEmitted uint64                  `json:"records_emitted" yaml:"records_emitted"`
	Uptime         string                  `json:"uptime" yaml:"uptime"`
}

// Summary returns a snapshot of the current statistics.
func (m *AnalysisMetrics) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latency := make(map[string]LatencyStats, len(m.latency))
	for name, h := range m.latency {
		latency[name] = LatencyStats{
			Mean:  h.Mean(),
			P50:   h.Percentile(50),
			P95:   h.Percentile(95),
			Max:   h.Max(),
			Count: h.Count(),
		}
	}

	return Summary{
		Latency:        latency,
		RunsCompleted:  m.RunsCompleted.Load(),
		RunsFailed:     m.RunsFailed.Load(),
		RecordsEmitted: m.RecordsEmitted.Load(),
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *AnalysisMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.latency {
		h.Reset()
	}
	m.RunsCompleted.Store(0)
	m.RunsFailed.Store(0)
	m.RecordsEmitted.Store(0)
	m.startTime = time.Now()
}
