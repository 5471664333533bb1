// Package database owns the pgx connection pool and hands out the
// store bound to it.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/store"
)

type Database struct {
	pool  *pgxpool.Pool
	store *store.Store
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	pool, err := pgxpool.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Fail fast on bad credentials rather than at first query.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{
		pool:  pool,
		store: store.New(pool),
	}, nil
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *Database) Store() *store.Store {
	return d.store
}

func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}
