package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// MatchRepository handles database operations for matches and their turn logs.
type MatchRepository interface {
	// Upsert inserts a match or replaces it, including its turn log.
	Upsert(ctx context.Context, match *models.Match) error

	// GetByID retrieves a match by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Match, error)

	// List returns every match in chronological order.
	List(ctx context.Context) ([]models.Match, error)

	// ListByPlayer returns the matches a player took part in, in chronological order.
	ListByPlayer(ctx context.Context, playerID string) ([]models.Match, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) (int, error)
}

type matchRepository struct {
	db Querier
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db Querier) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			id, side_a_player, side_a_deck, side_a_archetype,
			side_b_player, side_b_deck, side_b_archetype,
			result, played_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			side_a_player = excluded.side_a_player,
			side_a_deck = excluded.side_a_deck,
			side_a_archetype = excluded.side_a_archetype,
			side_b_player = excluded.side_b_player,
			side_b_deck = excluded.side_b_deck,
			side_b_archetype = excluded.side_b_archetype,
			result = excluded.result,
			played_at = excluded.played_at
	`
	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.SideA.PlayerID,
		match.SideA.DeckID,
		match.SideA.Archetype,
		match.SideB.PlayerID,
		match.SideB.DeckID,
		match.SideB.Archetype,
		string(match.Result),
		formatTime(match.PlayedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM turn_actions WHERE match_id = ?`, match.ID); err != nil {
		return fmt.Errorf("failed to clear actions of match %s: %w", match.ID, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_turns WHERE match_id = ?`, match.ID); err != nil {
		return fmt.Errorf("failed to clear turns of match %s: %w", match.ID, err)
	}

	for i, turn := range match.Turns {
		number := i + 1
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO match_turns (match_id, turn_number, side) VALUES (?, ?, ?)`,
			match.ID, number, string(turn.Side),
		)
		if err != nil {
			return fmt.Errorf("failed to insert turn %d of match %s: %w", number, match.ID, err)
		}

		for pos, action := range turn.Actions {
			_, err := r.db.ExecContext(ctx, `
				INSERT INTO turn_actions (match_id, turn_number, position, action_type, target)
				VALUES (?, ?, ?, ?, ?)`,
				match.ID, number, pos, action.Type, action.Target,
			)
			if err != nil {
				return fmt.Errorf("failed to insert action %d of turn %d in match %s: %w", pos, number, match.ID, err)
			}
		}
	}

	return nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	matches, err := r.list(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *matchRepository) List(ctx context.Context) ([]models.Match, error) {
	return r.list(ctx, "")
}

func (r *matchRepository) ListByPlayer(ctx context.Context, playerID string) ([]models.Match, error) {
	return r.list(ctx, `WHERE side_a_player = ? OR side_b_player = ?`, playerID, playerID)
}

func (r *matchRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "matches")
}

// list loads the matches selected by where, then attaches their turn logs.
func (r *matchRepository) list(ctx context.Context, where string, args ...any) ([]models.Match, error) {
	query := `
		SELECT id, side_a_player, side_a_deck, side_a_archetype,
			side_b_player, side_b_deck, side_b_archetype,
			result, played_at
		FROM matches
		` + where + `
		ORDER BY played_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []models.Match{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			m        models.Match
			result   string
			playedAt string
		)
		err := rows.Scan(
			&m.ID,
			&m.SideA.PlayerID,
			&m.SideA.DeckID,
			&m.SideA.Archetype,
			&m.SideB.PlayerID,
			&m.SideB.DeckID,
			&m.SideB.Archetype,
			&result,
			&playedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		m.Result = models.Result(result)
		if m.PlayedAt, err = parseTime(playedAt); err != nil {
			return nil, fmt.Errorf("match %s: %w", m.ID, err)
		}

		index[m.ID] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	if len(matches) == 0 {
		return matches, nil
	}

	if err := r.attachTurns(ctx, matches, index, where, args...); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) attachTurns(ctx context.Context, matches []models.Match, index map[string]int, where string, args ...any) error {
	query := `
		SELECT t.match_id, t.turn_number, t.side, a.action_type, a.target
		FROM match_turns t
		LEFT JOIN turn_actions a
			ON a.match_id = t.match_id AND a.turn_number = t.turn_number
		WHERE t.match_id IN (SELECT id FROM matches ` + where + `)
		ORDER BY t.match_id, t.turn_number, a.position
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			matchID    string
			number     int
			side       string
			actionType *string
			target     *string
		)
		if err := rows.Scan(&matchID, &number, &side, &actionType, &target); err != nil {
			return fmt.Errorf("failed to scan turn: %w", err)
		}

		i, ok := index[matchID]
		if !ok {
			continue
		}
		m := &matches[i]
		if len(m.Turns) < number {
			m.Turns = append(m.Turns, models.Turn{Side: models.Side(side)})
		}
		if actionType != nil {
			action := models.Action{Type: *actionType}
			if target != nil {
				action.Target = *target
			}
			turn := &m.Turns[len(m.Turns)-1]
			turn.Actions = append(turn.Actions, action)
		}
	}
	return rows.Err()
}
