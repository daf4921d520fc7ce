package analytics

import (
	"sync"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// Store holds the latest analysis snapshot for concurrent readers.
// Replace swaps the snapshot as a whole, so readers never observe a
// partially updated run.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a new snapshot. A nil snapshot clears the store.
// The store takes ownership of the snapshot; callers must not modify it afterwards.
func (s *Store) Replace(snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

// Latest returns the current snapshot, or nil before the first run.
func (s *Store) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Weakness returns the stored weakness profile for a player.
func (s *Store) Weakness(playerID string) (WeaknessProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return WeaknessProfile{}, false
	}
	profile, ok := s.snapshot.Weaknesses[playerID]
	return profile, ok
}

// Variance returns the stored variance profile for a player.
func (s *Store) Variance(playerID string) (VarianceProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return VarianceProfile{}, false
	}
	for _, profile := range s.snapshot.Variance {
		if profile.PlayerID == playerID {
			return profile, true
		}
	}
	return VarianceProfile{}, false
}

// Recommendations returns the stored improvement recommendations for a player.
func (s *Store) Recommendations(playerID string) ([]Recommendation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, false
	}
	recs, ok := s.snapshot.Recommendations[playerID]
	return recs, ok
}

// SuggestCards suggests up to n cards for the deck from the stored synergies.
func (s *Store) SuggestCards(deck models.Deck, n int) []DeckSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return []DeckSuggestion{}
	}
	return SuggestCards(s.snapshot.Synergies, deck, n)
}
