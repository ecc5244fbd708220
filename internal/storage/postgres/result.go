package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// ResultRepository stores finished battles.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// RecordResult inserts r. Recording the same battle twice is a no-op.
//
// Precondition: r.BattleID must be a UUID.
func (r *ResultRepository) RecordResult(ctx context.Context, res battle.Result) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO battle_results (battle_id, player1, player2, outcome, winner, forfeiter, turns)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		 ON CONFLICT (battle_id) DO NOTHING`,
		res.BattleID, res.Player1, res.Player2, res.State.String(), res.Winner, res.Forfeiter, res.Turns,
	)
	if err != nil {
		return fmt.Errorf("recording result of battle %s: %w", res.BattleID, err)
	}
	return nil
}

// WinCount returns how many recorded battles player has won.
func (r *ResultRepository) WinCount(ctx context.Context, player string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM battle_results WHERE winner = $1`, player,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting wins for %q: %w", player, err)
	}
	return n, nil
}
