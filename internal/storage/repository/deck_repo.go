package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// DeckRepository handles database operations for deck lists.
type DeckRepository interface {
	// Upsert inserts a deck or replaces its name, owner and card list.
	Upsert(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// List returns every deck ordered by ID, cards in their stored order.
	List(ctx context.Context) ([]models.Deck, error)

	// Count returns the number of stored decks.
	Count(ctx context.Context) (int, error)
}

type deckRepository struct {
	db Querier
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db Querier) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Upsert(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (id, owner_id, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, name = excluded.name
	`
	if _, err := r.db.ExecContext(ctx, query, deck.ID, deck.OwnerID, deck.Name); err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", deck.ID, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deck.ID); err != nil {
		return fmt.Errorf("failed to clear cards of deck %s: %w", deck.ID, err)
	}

	for i, cardID := range deck.Cards {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO deck_cards (deck_id, position, card_id) VALUES (?, ?, ?)`,
			deck.ID, i, cardID,
		)
		if err != nil {
			return fmt.Errorf("failed to add card %s to deck %s: %w", cardID, deck.ID, err)
		}
	}

	return nil
}

func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	decks, err := r.list(ctx, `WHERE d.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return nil, nil
	}
	return &decks[0], nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	return r.list(ctx, "")
}

func (r *deckRepository) list(ctx context.Context, where string, args ...any) ([]models.Deck, error) {
	query := `
		SELECT d.id, d.owner_id, d.name, dc.card_id
		FROM decks d
		LEFT JOIN deck_cards dc ON dc.deck_id = d.id
		` + where + `
		ORDER BY d.id, dc.position
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []models.Deck{}
	for rows.Next() {
		var (
			deck   models.Deck
			cardID *string
		)
		if err := rows.Scan(&deck.ID, &deck.OwnerID, &deck.Name, &cardID); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}

		if n := len(decks); n == 0 || decks[n-1].ID != deck.ID {
			deck.Cards = []string{}
			decks = append(decks, deck)
		}
		if cardID != nil {
			last := &decks[len(decks)-1]
			last.Cards = append(last.Cards, *cardID)
		}
	}
	return decks, rows.Err()
}

func (r *deckRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "decks")
}
