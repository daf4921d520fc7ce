package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// setupTestService opens a migrated database in a temporary directory.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)

	service := NewService(db)
	t.Cleanup(func() { _ = service.Close() })

	return service
}

func sampleHistory() *models.History {
	at := func(day int) time.Time {
		return time.Date(2024, 2, 1+day, 18, 30, 0, 0, time.UTC)
	}

	return &models.History{
		Cards: []models.Card{
			{ID: "c-ember", Name: "Ember Adept"},
			{ID: "c-tide", Name: "Tidecaller"},
		},
		Players: []models.Player{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		Decks: []models.Deck{
			{ID: "d-fire", OwnerID: "alice", Name: "Fire", Cards: []string{"c-ember", "c-tide", "c-ember"}},
			{ID: "d-empty", OwnerID: "bob", Name: "Empty", Cards: []string{}},
		},
		Matches: []models.Match{
			{
				ID:     "m-1",
				SideA:  models.Participant{PlayerID: "alice", DeckID: "d-fire", Archetype: "Aggro"},
				SideB:  models.Participant{PlayerID: "bob", Archetype: "Control"},
				Result: models.ResultSideA,
				Turns: []models.Turn{
					{Side: models.SideA, Actions: []models.Action{{Type: "summon", Target: "c-ember"}, {Type: "strike", Target: "opponent"}}},
					{Side: models.SideB},
					{Side: models.SideA, Actions: []models.Action{{Type: "draw"}}},
				},
				PlayedAt: at(0),
			},
			{
				ID:       "m-2",
				SideA:    models.Participant{PlayerID: "bob"},
				SideB:    models.Participant{PlayerID: "alice", DeckID: "d-missing"},
				Result:   models.ResultDraw,
				PlayedAt: at(1),
			},
			{
				ID:       "m-3",
				SideA:    models.Participant{PlayerID: "alice"},
				SideB:    models.Participant{PlayerID: "carol"},
				Result:   models.ResultPending,
				PlayedAt: at(2),
			},
		},
		MetaSnapshots: []models.MetaSnapshot{
			{TakenAt: at(0), Archetypes: []models.ArchetypeShare{{Name: "Aggro", Percentage: 40}, {Name: "Control", Percentage: 35.5}}},
			{TakenAt: at(7), Archetypes: []models.ArchetypeShare{{Name: "Control", Percentage: 50}}},
		},
	}
}
