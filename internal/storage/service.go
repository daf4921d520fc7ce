package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/repository"
)

// Service provides high-level operations for storing and loading match history.
type Service struct {
	db      *DB
	players repository.PlayerRepository
	decks   repository.DeckRepository
	matches repository.MatchRepository
	meta    repository.MetaRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:      db,
		players: repository.NewPlayerRepository(db.Conn()),
		decks:   repository.NewDeckRepository(db.Conn()),
		matches: repository.NewMatchRepository(db.Conn()),
		meta:    repository.NewMetaRepository(db.Conn()),
	}
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// Counts summarizes how much history is stored.
type Counts struct {
	Players   int `json:"players" yaml:"players"`
	Decks     int `json:"decks" yaml:"decks"`
	Matches   int `json:"matches" yaml:"matches"`
	Snapshots int `json:"snapshots" yaml:"snapshots"`
}

// ImportHistory stores every record of the history in a single transaction.
// Existing records with the same ID are replaced.
func (s *Service) ImportHistory(ctx context.Context, history *models.History) (Counts, error) {
	var counts Counts
	if history == nil {
		return counts, nil
	}

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		players := repository.NewPlayerRepository(tx)
		decks := repository.NewDeckRepository(tx)
		matches := repository.NewMatchRepository(tx)
		meta := repository.NewMetaRepository(tx)

		for i := range history.Cards {
			if err := players.UpsertCard(ctx, &history.Cards[i]); err != nil {
				return err
			}
		}
		for i := range history.Players {
			if err := players.UpsertPlayer(ctx, &history.Players[i]); err != nil {
				return err
			}
			counts.Players++
		}
		for i := range history.Decks {
			if err := decks.Upsert(ctx, &history.Decks[i]); err != nil {
				return err
			}
			counts.Decks++
		}
		for i := range history.Matches {
			if err := matches.Upsert(ctx, &history.Matches[i]); err != nil {
				return err
			}
			counts.Matches++
		}
		for i := range history.MetaSnapshots {
			if err := meta.Upsert(ctx, &history.MetaSnapshots[i]); err != nil {
				return err
			}
			counts.Snapshots++
		}
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("import history: %w", err)
	}

	return counts, nil
}

// LoadHistory reads the complete stored history.
func (s *Service) LoadHistory(ctx context.Context) (*models.History, error) {
	cards, err := s.players.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.meta.List(ctx)
	if err != nil {
		return nil, err
	}

	return &models.History{
		Cards:         cards,
		Players:       players,
		Decks:         decks,
		Matches:       matches,
		MetaSnapshots: snapshots,
	}, nil
}

// PlayerMatches returns the stored matches of one player.
func (s *Service) PlayerMatches(ctx context.Context, playerID string) ([]models.Match, error) {
	return s.matches.ListByPlayer(ctx, playerID)
}

// Deck returns a stored deck, or nil if it does not exist.
func (s *Service) Deck(ctx context.Context, id string) (*models.Deck, error) {
	return s.decks.GetByID(ctx, id)
}

// Counts returns the number of stored records per kind.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Players, err = s.players.CountPlayers(ctx); err != nil {
		return Counts{}, err
	}
	if c.Decks, err = s.decks.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Matches, err = s.matches.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Snapshots, err = s.meta.Count(ctx); err != nil {
		return Counts{}, err
	}
	return c, nil
}
