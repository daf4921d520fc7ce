package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// PlayerRepository handles database operations for players and cards.
type PlayerRepository interface {
	// UpsertPlayer inserts a player or updates its name.
	UpsertPlayer(ctx context.Context, player *models.Player) error

	// UpsertCard inserts a card or updates its name.
	UpsertCard(ctx context.Context, card *models.Card) error

	// ListPlayers returns every player ordered by ID.
	ListPlayers(ctx context.Context) ([]models.Player, error)

	// ListCards returns every card ordered by ID.
	ListCards(ctx context.Context) ([]models.Card, error)

	// CountPlayers returns the number of stored players.
	CountPlayers(ctx context.Context) (int, error)
}

type playerRepository struct {
	db Querier
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db Querier) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) UpsertPlayer(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	if _, err := r.db.ExecContext(ctx, query, player.ID, player.Name); err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.ID, err)
	}
	return nil
}

func (r *playerRepository) UpsertCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	if _, err := r.db.ExecContext(ctx, query, card.ID, card.Name); err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
	}
	return nil
}

func (r *playerRepository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *playerRepository) ListCards(ctx context.Context) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *playerRepository) CountPlayers(ctx context.Context) (int, error) {
	return count(ctx, r.db, "players")
}
