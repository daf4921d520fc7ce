package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// MetaRepository handles database operations for metagame snapshots.
type MetaRepository interface {
	// Upsert stores a snapshot, replacing any snapshot taken at the same time.
	Upsert(ctx context.Context, snapshot *models.MetaSnapshot) error

	// List returns every snapshot in chronological order.
	List(ctx context.Context) ([]models.MetaSnapshot, error)

	// Count returns the number of stored snapshots.
	Count(ctx context.Context) (int, error)
}

type metaRepository struct {
	db Querier
}

// NewMetaRepository creates a new metagame snapshot repository.
func NewMetaRepository(db Querier) MetaRepository {
	return &metaRepository{db: db}
}

func (r *metaRepository) Upsert(ctx context.Context, snapshot *models.MetaSnapshot) error {
	takenAt := formatTime(snapshot.TakenAt)

	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO meta_snapshots (taken_at) VALUES (?)`, takenAt); err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", takenAt, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meta_shares WHERE taken_at = ?`, takenAt); err != nil {
		return fmt.Errorf("failed to clear snapshot %s: %w", takenAt, err)
	}

	for i, share := range snapshot.Archetypes {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO meta_shares (taken_at, position, archetype, percentage) VALUES (?, ?, ?, ?)`,
			takenAt, i, share.Name, share.Percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share %s of snapshot %s: %w", share.Name, takenAt, err)
		}
	}

	return nil
}

func (r *metaRepository) List(ctx context.Context) ([]models.MetaSnapshot, error) {
	query := `
		SELECT s.taken_at, m.archetype, m.percentage
		FROM meta_snapshots s
		LEFT JOIN meta_shares m ON m.taken_at = s.taken_at
		ORDER BY s.taken_at, m.position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.MetaSnapshot{}
	last := ""
	for rows.Next() {
		var (
			takenAt    string
			archetype  *string
			percentage *float64
		)
		if err := rows.Scan(&takenAt, &archetype, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		if takenAt != last {
			t, err := parseTime(takenAt)
			if err != nil {
				return nil, err
			}
			snapshots = append(snapshots, models.MetaSnapshot{TakenAt: t, Archetypes: []models.ArchetypeShare{}})
			last = takenAt
		}
		if archetype != nil && percentage != nil {
			s := &snapshots[len(snapshots)-1]
			s.Archetypes = append(s.Archetypes, models.ArchetypeShare{Name: *archetype, Percentage: *percentage})
		}
	}
	return snapshots, rows.Err()
}

func (r *metaRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "meta_snapshots")
}
