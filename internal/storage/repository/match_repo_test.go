package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/repository"
)

func testMatch(id, a, b string, result models.Result, day int) *models.Match {
	return &models.Match{
		ID:       id,
		SideA:    models.Participant{PlayerID: a, DeckID: "deck-" + a, Archetype: "Aggro"},
		SideB:    models.Participant{PlayerID: b, Archetype: "Control"},
		Result:   result,
		PlayedAt: time.Date(2024, 3, 1+day, 12, 0, 0, 0, time.UTC),
	}
}

func TestMatchRepository_TurnLog(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	match := testMatch("m1", "alice", "bob", models.ResultSideA, 0)
	match.Turns = []models.Turn{
		{Side: models.SideA, Actions: []models.Action{{Type: "summon", Target: "c1"}, {Type: "pass"}}},
		{Side: models.SideB},
		{Side: models.SideA, Actions: []models.Action{{Type: "strike", Target: "opponent"}}},
	}
	require.NoError(t, repo.Upsert(ctx, match))

	got, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *match, *got)

	match.Result = models.ResultDraw
	match.Turns = match.Turns[:1]
	require.NoError(t, repo.Upsert(ctx, match))

	got, err = repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.ResultDraw, got.Result)
	assert.Len(t, got.Turns, 1)
}

func TestMatchRepository_ListByPlayer(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(ctx, testMatch("m3", "carol", "alice", models.ResultPending, 2)))
	require.NoError(t, repo.Upsert(ctx, testMatch("m1", "alice", "bob", models.ResultSideA, 0)))
	require.NoError(t, repo.Upsert(ctx, testMatch("m2", "bob", "carol", models.ResultSideB, 1)))

	tests := []struct {
		player string
		want   []string
	}{
		{player: "alice", want: []string{"m1", "m3"}},
		{player: "bob", want: []string{"m1", "m2"}},
		{player: "carol", want: []string{"m2", "m3"}},
		{player: "dave", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.player, func(t *testing.T) {
			matches, err := repo.ListByPlayer(ctx, tt.player)
			require.NoError(t, err)

			ids := []string{}
			for _, m := range matches {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "m1", all[0].ID, "chronological order")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMatchRepository_PreservesInstant(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	match := testMatch("m1", "alice", "bob", models.ResultSideB, 0)
	match.PlayedAt = time.Date(2024, 3, 1, 9, 15, 30, 123456789, time.FixedZone("UTC+2", 2*60*60))
	require.NoError(t, repo.Upsert(ctx, match))

	got, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, match.PlayedAt.Equal(got.PlayedAt))
	assert.Equal(t, time.UTC, got.PlayedAt.Location())
}
