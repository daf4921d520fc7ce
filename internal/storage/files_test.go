package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

func TestReadHistoryFile(t *testing.T) {
	dir := t.TempDir()

	jsonData := `{
  "players": [{"id": "alice", "name": "Alice"}],
  "decks": [{"id": "d1", "cards": ["a", "b"]}],
  "matches": [{
    "id": "m1",
    "side_a": {"player_id": "alice", "deck_id": "d1"},
    "side_b": {"player_id": "bob", "archetype": "Control"},
    "result": "sideA",
    "turns": [{"side": "sideA", "actions": [{"type": "strike", "target": "opponent"}]}],
    "played_at": "2024-02-01T18:30:00Z"
  }],
  "meta_snapshots": [{"taken_at": "2024-02-01T00:00:00Z", "archetypes": [{"name": "Control", "percentage": 30}]}]
}`

	yamlData := `
players:
  - id: alice
    name: Alice
decks:
  - id: d1
    cards: [a, b]
matches:
  - id: m1
    side_a: {player_id: alice, deck_id: d1}
    side_b: {player_id: bob, archetype: Control}
    result: sideA
    turns:
      - side: sideA
        actions:
          - {type: strike, target: opponent}
    played_at: 2024-02-01T18:30:00Z
meta_snapshots:
  - taken_at: 2024-02-01T00:00:00Z
    archetypes:
      - {name: Control, percentage: 30}
`

	want := &models.History{
		Players: []models.Player{{ID: "alice", Name: "Alice"}},
		Decks:   []models.Deck{{ID: "d1", Cards: []string{"a", "b"}}},
		Matches: []models.Match{{
			ID:       "m1",
			SideA:    models.Participant{PlayerID: "alice", DeckID: "d1"},
			SideB:    models.Participant{PlayerID: "bob", Archetype: "Control"},
			Result:   models.ResultSideA,
			Turns:    []models.Turn{{Side: models.SideA, Actions: []models.Action{{Type: "strike", Target: "opponent"}}}},
			PlayedAt: time.Date(2024, 2, 1, 18, 30, 0, 0, time.UTC),
		}},
		MetaSnapshots: []models.MetaSnapshot{{
			TakenAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Archetypes: []models.ArchetypeShare{{Name: "Control", Percentage: 30}},
		}},
	}

	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "JSON", file: "history.json", data: jsonData},
		{name: "YAML", file: "history.yaml", data: yamlData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			got, err := ReadHistoryFile(path)
			require.NoError(t, err)
			assert.Equal(t, want.Players, got.Players)
			assert.Equal(t, want.Decks, got.Decks)
			require.Len(t, got.Matches, 1)
			assert.True(t, want.Matches[0].PlayedAt.Equal(got.Matches[0].PlayedAt))
			got.Matches[0].PlayedAt = want.Matches[0].PlayedAt
			assert.Equal(t, want.Matches, got.Matches)
			require.Len(t, got.MetaSnapshots, 1)
			assert.True(t, want.MetaSnapshots[0].TakenAt.Equal(got.MetaSnapshots[0].TakenAt))
			assert.Equal(t, want.MetaSnapshots[0].Archetypes, got.MetaSnapshots[0].Archetypes)
		})
	}
}

func TestReadHistoryFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadHistoryFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"players": [], "extra": true}`), 0o644))
	_, err = ReadHistoryFile(unknown)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("players: [\n"), 0o644))
	_, err = ReadHistoryFile(broken)
	assert.Error(t, err)
}
