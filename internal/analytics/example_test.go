package analytics_test

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

func ExampleEngine_Weaknesses() {
	engine, err := analytics.NewEngine(analytics.DefaultParameters(), analytics.AllFeatures())
	if err != nil {
		panic(err)
	}

	var matches []models.Match
	for i := 0; i < 12; i++ {
		opponent, won := "Control", i < 2
		if i >= 8 {
			opponent, won = "Aggro", i < 11
		}
		result := models.ResultSideB
		if won {
			result = models.ResultSideA
		}
		matches = append(matches, models.Match{
			ID:     fmt.Sprintf("m%d", i),
			SideA:  models.Participant{PlayerID: "alice"},
			SideB:  models.Participant{PlayerID: "bob", Archetype: opponent},
			Result: result,
		})
	}

	profile := engine.Weaknesses(models.Player{ID: "alice"}, matches)
	for _, w := range profile.Weaknesses {
		fmt.Printf("%s: %.2f win rate, severity %.3f\n", w.Archetype, w.WinRate, w.Score)
	}
	// Output:
	// Control: 0.25 win rate, severity 0.424
}

func ExampleStore() {
	engine, err := analytics.NewEngine(analytics.DefaultParameters(), analytics.AllFeatures(),
		analytics.WithClock(func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }))
	if err != nil {
		panic(err)
	}

	snapshot, err := engine.Run(context.Background(), &models.History{})
	if err != nil {
		panic(err)
	}

	store := analytics.NewStore()
	store.Replace(snapshot)

	fmt.Println(store.Latest().GeneratedAt.Format(time.DateOnly))
	// Output:
	// 2024-03-01
}
