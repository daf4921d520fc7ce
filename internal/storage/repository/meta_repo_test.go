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

func TestMetaRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMetaRepository(setupTestDB(t))

	first := &models.MetaSnapshot{
		TakenAt:    time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		Archetypes: []models.ArchetypeShare{{Name: "Control", Percentage: 30}, {Name: "Aggro", Percentage: 25.5}},
	}
	second := &models.MetaSnapshot{
		TakenAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Archetypes: []models.ArchetypeShare{{Name: "Aggro", Percentage: 40}},
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, second))

	snapshots, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MetaSnapshot{*second, *first}, snapshots)

	// Re-importing a snapshot replaces its shares.
	first.Archetypes = []models.ArchetypeShare{{Name: "Midrange", Percentage: 12}}
	require.NoError(t, repo.Upsert(ctx, first))

	snapshots, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, first.Archetypes, snapshots[1].Archetypes)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
