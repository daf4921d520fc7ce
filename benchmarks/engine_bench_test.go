// Package benchmarks measures the analyzers over synthetic match history.
//
// To run:
//
//	go test -bench=. -benchmem ./benchmarks/...
//
// To compare worker counts or changes across commits:
//
//	go install golang.org/x/perf/cmd/benchstat@latest
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > old.txt
//	benchstat old.txt new.txt
package benchmarks

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

var (
	archetypes  = []string{"Aggro", "Control", "Midrange", "Combo", "Tempo"}
	actionTypes = []string{"summon", "strike", "cast", "draw", "pass"}
)

// makeHistory builds a deterministic history with the given number of
// players, each owning one 20-card deck drawn from a 120-card pool.
func makeHistory(players, matchesPerPlayer int) *models.History {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := &models.History{}

	for p := 0; p < players; p++ {
		id := fmt.Sprintf("p%03d", p)
		h.Players = append(h.Players, models.Player{ID: id, Name: "Player " + id})

		deck := models.Deck{ID: "d-" + id, OwnerID: id}
		for _, c := range rng.Perm(120)[:20] {
			deck.Cards = append(deck.Cards, fmt.Sprintf("c%03d", c))
		}
		h.Decks = append(h.Decks, deck)
	}

	for i := 0; i < players*matchesPerPlayer/2; i++ {
		a := rng.Intn(players)
		b := (a + 1 + rng.Intn(players-1)) % players
		m := models.Match{
			ID:       fmt.Sprintf("m%06d", i),
			SideA:    models.Participant{PlayerID: h.Players[a].ID, DeckID: h.Decks[a].ID, Archetype: archetypes[a%len(archetypes)]},
			SideB:    models.Participant{PlayerID: h.Players[b].ID, DeckID: h.Decks[b].ID, Archetype: archetypes[b%len(archetypes)]},
			Result:   models.ResultSideA,
			PlayedAt: start.Add(time.Duration(i) * time.Hour),
		}
		switch r := rng.Float64(); {
		case r < 0.45:
			m.Result = models.ResultSideB
		case r < 0.5:
			m.Result = models.ResultDraw
		}
		for t := 0; t < 8; t++ {
			side := models.SideA
			if t%2 == 1 {
				side = models.SideB
			}
			turn := models.Turn{Side: side}
			for k := 0; k < 1+rng.Intn(3); k++ {
				turn.Actions = append(turn.Actions, models.Action{Type: actionTypes[rng.Intn(len(actionTypes))]})
			}
			m.Turns = append(m.Turns, turn)
		}
		h.Matches = append(h.Matches, m)
	}

	for d := 0; d < 120; d++ {
		snap := models.MetaSnapshot{TakenAt: start.AddDate(0, 0, d)}
		for i, name := range archetypes {
			pct := 20 + 8*math.Sin(2*math.Pi*float64(d)/float64(20+5*i))
			snap.Archetypes = append(snap.Archetypes, models.ArchetypeShare{Name: name, Percentage: pct})
		}
		h.MetaSnapshots = append(h.MetaSnapshots, snap)
	}

	return h
}

func newEngine(b *testing.B, opts ...analytics.Option) *analytics.Engine {
	b.Helper()
	engine, err := analytics.NewEngine(analytics.DefaultParameters(), analytics.AllFeatures(), opts...)
	if err != nil {
		b.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func historyName(players int) string {
	return fmt.Sprintf("players%d", players)
}

func BenchmarkSynergy(b *testing.B) {
	for _, players := range []int{10, 50, 200} {
		h := makeHistory(players, 40)
		engine := newEngine(b)
		b.Run(historyName(players), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				engine.Synergies(h.Decks, h.Matches)
			}
		})
	}
}

func BenchmarkDecisionPoints(b *testing.B) {
	for _, players := range []int{10, 50, 200} {
		h := makeHistory(players, 40)
		engine := newEngine(b)
		b.Run(historyName(players), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				engine.DecisionPoints(h.Matches)
			}
		})
	}
}

func BenchmarkVariance(b *testing.B) {
	h := makeHistory(50, 100)
	engine := newEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Variance(h.Players, h.Matches)
	}
}

func BenchmarkCyclesAndForecast(b *testing.B) {
	h := makeHistory(2, 2)
	engine := newEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cycles := engine.Cycles(h.MetaSnapshots)
		engine.Forecast(cycles, analytics.DefaultForecastHorizon)
	}
}

func BenchmarkWeaknesses(b *testing.B) {
	h := makeHistory(50, 100)
	engine := newEngine(b)
	player := h.Players[0]

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Weaknesses(player, h.Matches)
	}
}

// BenchmarkRun compares worker pool sizes for a full analysis run.
func BenchmarkRun(b *testing.B) {
	h := makeHistory(100, 60)

	for _, workers := range []int{1, 2, 4, 8} {
		engine := newEngine(b, analytics.WithWorkers(workers))
		b.Run(fmt.Sprintf("workers%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Run(context.Background(), h); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
