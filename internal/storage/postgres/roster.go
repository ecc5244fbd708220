package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardbattle/internal/roster"
)

// RosterRepository persists rosters in the decks table, one row per slot.
type RosterRepository struct {
	db *pgxpool.Pool
}

// NewRosterRepository creates a RosterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{db: db}
}

// Roster returns ownerID's card names in slot order.
//
// Postcondition: returns roster.ErrNoRoster when the owner has no rows.
func (r *RosterRepository) Roster(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT card_name FROM decks WHERE owner_id = $1 ORDER BY slot`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying roster for %q: %w", ownerID, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning roster for %q: %w", ownerID, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", roster.ErrNoRoster, ownerID)
	}
	return names, nil
}

// SetRoster atomically replaces ownerID's roster. An empty list removes it.
func (r *RosterRepository) SetRoster(ctx context.Context, ownerID string, names []string) error {
	if ownerID == "" {
		return errors.New("roster: owner id must not be empty")
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM decks WHERE owner_id = $1`, ownerID); err != nil {
			return fmt.Errorf("clearing roster for %q: %w", ownerID, err)
		}
		if len(names) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for slot, name := range names {
			batch.Queue(
				`INSERT INTO decks (owner_id, slot, card_name) VALUES ($1, $2, $3)`,
				ownerID, slot, name,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("writing roster for %q: %w", ownerID, err)
		}
		return nil
	})
}
