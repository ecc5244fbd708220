// Package postgres stores rosters and battle results in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardbattle/internal/config"
)

// ApplicationName tags every connection so battle traffic is identifiable in
// pg_stat_activity.
const ApplicationName = "cardbattle"

// StatementTimeout bounds each statement server-side. It matches the budget the
// battle handler gives a result write.
const StatementTimeout = 5 * time.Second

// Pool owns the connections behind the roster and result repositories.
type Pool struct {
	pool    *pgxpool.Pool
	rosters *RosterRepository
	results *ResultRepository
}

// PoolConfig builds the pgx pool configuration for cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a config carrying cfg's limits plus the
// application_name and statement_timeout runtime parameters.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	params := poolCfg.ConnConfig.RuntimeParams
	params["application_name"] = ApplicationName
	params["statement_timeout"] = fmt.Sprintf("%d", StatementTimeout.Milliseconds())
	return poolCfg, nil
}

// NewPool connects to PostgreSQL and prepares the repositories.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. Rosters and
// Results are ready for use upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{
		pool:    pool,
		rosters: NewRosterRepository(pool),
		results: NewResultRepository(pool),
	}, nil
}

// Rosters returns the roster repository backed by this pool.
func (p *Pool) Rosters() *RosterRepository { return p.rosters }

// Results returns the battle result repository backed by this pool.
func (p *Pool) Results() *ResultRepository { return p.results }

// Exec runs a schema or maintenance statement outside the repositories.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns a non-nil error if the statement fails.
func (p *Pool) Exec(ctx context.Context, sql string) error {
	if _, err := p.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil if the database responds within the timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// InUse reports how many connections are checked out and how many the pool holds.
func (p *Pool) InUse() (acquired, total int32) {
	s := p.pool.Stat()
	return s.AcquiredConns(), s.TotalConns()
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}
