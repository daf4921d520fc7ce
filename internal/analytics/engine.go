package analytics

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/konivrer-insights/internal/metrics"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// DefaultForecastHorizon is how far ahead Run forecasts the metagame, in days.
const DefaultForecastHorizon = 30.0

// Snapshot is the complete output of one analysis run.
type Snapshot struct {
	RunID           uuid.UUID                   `json:"run_id" yaml:"run_id"`
	GeneratedAt     time.Time                   `json:"generated_at" yaml:"generated_at"`
	Synergies       []SynergyRecord             `json:"synergies" yaml:"synergies"`
	DecisionPoints  []DecisionPoint             `json:"decision_points" yaml:"decision_points"`
	Variance        []VarianceProfile           `json:"variance" yaml:"variance"`
	Cycles          []CyclePrediction           `json:"cycles" yaml:"cycles"`
	Forecasts       []MetaForecast              `json:"forecasts" yaml:"forecasts"`
	Weaknesses      map[string]WeaknessProfile  `json:"weaknesses" yaml:"weaknesses"`
	Recommendations map[string][]Recommendation `json:"recommendations" yaml:"recommendations"`
}

// Engine runs the enabled analyzers over a history. It keeps no results
// between calls; use a Store to hold the latest snapshot.
type Engine struct {
	params   Parameters
	features Features
	logger   *logrus.Entry
	metrics  *metrics.AnalysisMetrics
	now      func() time.Time
	workers  int
	horizon  float64

	synergy   *SynergyAnalyzer
	decisions *DecisionPointAnalyzer
	variance  *VarianceAnalyzer
	cycles    *CycleDetector
	weakness  *WeaknessDetector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Analyzers log at debug, runs at info.
func WithLogger(logger *logrus.Entry) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records analyzer latency into m instead of a private collector.
func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used for forecasts and snapshots.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWorkers bounds the number of per-player shards Run processes at once.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithForecastHorizon sets how many days ahead Run forecasts.
func WithForecastHorizon(days float64) Option {
	return func(e *Engine) { e.horizon = days }
}

// NewEngine creates an engine. It fails with ErrInvalidParameters when the
// parameters are unusable.
func NewEngine(params Parameters, features Features, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		params:   params,
		features: features,
		now:      time.Now,
		workers:  runtime.GOMAXPROCS(0),
		horizon:  DefaultForecastHorizon,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidParameters, e.workers)
	}
	if e.horizon < 0 {
		return nil, fmt.Errorf("%w: forecast horizon must not be negative, got %v", ErrInvalidParameters, e.horizon)
	}

	e.logger = orDiscard(e.logger)
	if e.metrics == nil {
		e.metrics = metrics.NewAnalysisMetrics()
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.synergy = NewSynergyAnalyzer(params, e.logger)
	e.decisions = NewDecisionPointAnalyzer(params, e.logger)
	e.variance = NewVarianceAnalyzer(params, e.logger)
	e.cycles = NewCycleDetector(params, e.logger)
	e.weakness = NewWeaknessDetector(params, e.logger)

	return e, nil
}

// Parameters returns the engine's analysis parameters.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// Features returns the enabled analyzers.
func (e *Engine) Features() Features {
	return e.features
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *metrics.AnalysisMetrics {
	return e.metrics
}

// Synergies computes card synergies.
func (e *Engine) Synergies(decks []models.Deck, matches []models.Match) []SynergyRecord {
	if !e.features.CardSynergy {
		return []SynergyRecord{}
	}
	start := time.Now()
	records := e.synergy.Analyze(decks, matches)
	e.metrics.Observe(metrics.Synergy, start, len(records))
	return records
}

// DecisionPoints finds turn actions that move the win rate.
func (e *Engine) DecisionPoints(matches []models.Match) []DecisionPoint {
	if !e.features.DecisionPoints {
		return []DecisionPoint{}
	}
	start := time.Now()
	points := e.decisions.Analyze(matches)
	e.metrics.Observe(metrics.DecisionPoints, start, len(points))
	return points
}

// Variance profiles every player with enough matches.
func (e *Engine) Variance(players []models.Player, matches []models.Match) []VarianceProfile {
	if !e.features.PerformanceVariance {
		return []VarianceProfile{}
	}
	start := time.Now()
	profiles := e.variance.Analyze(players, matches)
	e.metrics.Observe(metrics.Variance, start, len(profiles))
	return profiles
}

// Cycles detects cyclical archetypes in the metagame history.
func (e *Engine) Cycles(snapshots []models.MetaSnapshot) []CyclePrediction {
	if !e.features.MetagameCycles {
		return []CyclePrediction{}
	}
	start := time.Now()
	cycles := e.cycles.Detect(snapshots)
	e.metrics.Observe(metrics.Cycles, start, len(cycles))
	return cycles
}

// Forecast predicts archetype prevalence daysInFuture days from now.
func (e *Engine) Forecast(cycles []CyclePrediction, daysInFuture float64) []MetaForecast {
	if !e.features.MetagameCycles {
		return []MetaForecast{}
	}
	return Forecast(cycles, addDays(e.now(), daysInFuture), e.params.ForecastMinConfidence)
}

// Weaknesses builds the weakness profile for one player.
func (e *Engine) Weaknesses(player models.Player, matches []models.Match) WeaknessProfile {
	if !e.features.PlayerWeaknesses {
		return WeaknessProfile{
			PlayerID:              player.ID,
			PlayerName:            player.Name,
			Weaknesses:            []Matchup{},
			Strengths:             []Matchup{},
			PlayPatternWeaknesses: []PatternWeakness{},
		}
	}
	start := time.Now()
	profile := e.weakness.Detect(player, matches)
	e.metrics.Observe(metrics.Weakness, start, len(profile.Weaknesses)+len(profile.PlayPatternWeaknesses))
	return profile
}

// SuggestCards returns up to n cards that pair well with the deck.
func (e *Engine) SuggestCards(synergies []SynergyRecord, deck models.Deck, n int) []DeckSuggestion {
	if !e.features.CardSynergy {
		return []DeckSuggestion{}
	}
	return SuggestCards(synergies, deck, n)
}

// Improvements builds prioritized recommendations for a player.
func (e *Engine) Improvements(profile *WeaknessProfile, variance *VarianceProfile) []Recommendation {
	if !e.features.PlayerWeaknesses {
		profile = nil
	}
	if !e.features.PerformanceVariance {
		variance = nil
	}
	return Improvements(profile, variance)
}

// playerShard is the per-player slice of a run.
type playerShard struct {
	variance        *VarianceProfile
	weakness        *WeaknessProfile
	recommendations []Recommendation
}

// Run computes every enabled analysis over the history. Per-player work is
// spread over a bounded worker pool; the output matches the sequential
// methods exactly. A cancelled context aborts the run between shards.
func (e *Engine) Run(ctx context.Context, history *models.History) (*Snapshot, error) {
	start := time.Now()
	snapshot, err := e.run(ctx, history)
	e.metrics.Observe(metrics.Run, start, 0)
	if err != nil {
		e.metrics.RunsFailed.Add(1)
		e.logger.WithError(err).Warn("Analysis run aborted")
		return nil, err
	}
	e.metrics.RunsCompleted.Add(1)

	e.logger.WithFields(logrus.Fields{
		"run_id":          snapshot.RunID,
		"synergies":       len(snapshot.Synergies),
		"decision_points": len(snapshot.DecisionPoints),
		"variance":        len(snapshot.Variance),
		"cycles":          len(snapshot.Cycles),
		"weaknesses":      len(snapshot.Weaknesses),
		"duration":        time.Since(start).Round(time.Millisecond),
	}).Info("Analysis run complete")

	return snapshot, nil
}

func (e *Engine) run(ctx context.Context, history *models.History) (*Snapshot, error) {
	if history == nil {
		history = &models.History{}
	}

	snapshot := &Snapshot{
		RunID:           uuid.New(),
		GeneratedAt:     e.now(),
		Weaknesses:      make(map[string]WeaknessProfile),
		Recommendations: make(map[string][]Recommendation),
	}

	players := uniquePlayers(history.Players)
	byPlayer := indexMatchesByPlayer(history.Matches)
	shards := make([]playerShard, len(players))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snapshot.Synergies = e.Synergies(history.Decks, history.Matches)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snapshot.DecisionPoints = e.DecisionPoints(history.Matches)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snapshot.Cycles = e.Cycles(history.MetaSnapshots)
		snapshot.Forecasts = Forecast(snapshot.Cycles, addDays(snapshot.GeneratedAt, e.horizon), e.params.ForecastMinConfidence)
		return nil
	})

	for i, player := range players {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shards[i] = e.analyzePlayer(player, byPlayer[player.ID])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}

	snapshot.Variance = make([]VarianceProfile, 0, len(players))
	for i, player := range players {
		shard := shards[i]
		if shard.variance != nil {
			snapshot.Variance = append(snapshot.Variance, *shard.variance)
		}
		if shard.weakness != nil {
			snapshot.Weaknesses[player.ID] = *shard.weakness
		}
		if shard.variance != nil || shard.weakness != nil {
			snapshot.Recommendations[player.ID] = shard.recommendations
		}
	}
	SortVarianceProfiles(snapshot.Variance)

	return snapshot, nil
}

func (e *Engine) analyzePlayer(player models.Player, matches []models.Match) playerShard {
	var shard playerShard

	if e.features.PerformanceVariance {
		start := time.Now()
		emitted := 0
		if profile, ok := e.variance.Profile(player, matches); ok {
			shard.variance = &profile
			emitted = 1
		}
		e.metrics.Observe(metrics.VarianceProfile, start, emitted)
	}

	if e.features.PlayerWeaknesses {
		profile := e.Weaknesses(player, matches)
		if profile.MatchCount >= e.params.MinProfileMatches {
			shard.weakness = &profile
		}
	}

	shard.recommendations = Improvements(shard.weakness, shard.variance)
	return shard
}

func uniquePlayers(players []models.Player) []models.Player {
	seen := make(map[string]bool, len(players))
	unique := make([]models.Player, 0, len(players))
	for _, p := range players {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}
	return unique
}

func orDiscard(logger *logrus.Entry) *logrus.Entry {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
