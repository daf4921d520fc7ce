package analytics

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

func TestStore_Empty(t *testing.T) {
	store := NewStore()

	assert.Nil(t, store.Latest())
	_, ok := store.Weakness("alice")
	assert.False(t, ok)
	_, ok = store.Variance("alice")
	assert.False(t, ok)
	_, ok = store.Recommendations("alice")
	assert.False(t, ok)
	assert.Empty(t, store.SuggestCards(models.Deck{Cards: []string{"X"}}, 3))
}

func TestStore_Queries(t *testing.T) {
	engine := newTestEngine(t)
	snapshot, err := engine.Run(context.Background(), fixtureHistory())
	require.NoError(t, err)

	store := NewStore()
	store.Replace(snapshot)

	assert.Same(t, snapshot, store.Latest())

	carol, ok := store.Weakness("carol")
	require.True(t, ok)
	assert.Equal(t, snapshot.Weaknesses["carol"], carol)

	variance, ok := store.Variance("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", variance.PlayerID)

	recs, ok := store.Recommendations("carol")
	require.True(t, ok)
	assert.NotEmpty(t, recs)

	suggestions := store.SuggestCards(models.Deck{Cards: []string{"X"}}, 3)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Y", suggestions[0].CardID)

	store.Replace(nil)
	assert.Nil(t, store.Latest())
}

func TestStore_ConcurrentReplace(t *testing.T) {
	store := NewStore()

	snapshots := make([]*Snapshot, 8)
	for i := range snapshots {
		id := uuid.New()
		snapshots[i] = &Snapshot{
			RunID: id,
			Weaknesses: map[string]WeaknessProfile{
				"alice": {PlayerID: "alice", PlayerName: id.String()},
			},
			Recommendations: map[string][]Recommendation{
				"alice": {{Type: RecommendConsistency, Message: id.String()}},
			},
		}
	}

	var wg sync.WaitGroup
	for _, s := range snapshots {
		wg.Add(1)
		go func(s *Snapshot) {
			defer wg.Done()
			store.Replace(s)
		}(s)
	}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				latest := store.Latest()
				if latest == nil {
					continue
				}
				// Every field comes from the same run.
				assert.Equal(t, latest.RunID.String(), latest.Weaknesses["alice"].PlayerName)
				assert.Equal(t, latest.RunID.String(), latest.Recommendations["alice"][0].Message)
			}
		}()
	}
	wg.Wait()

	require.NotNil(t, store.Latest())
	assert.Contains(t, snapshots, store.Latest())
}
