// Package store is the hand-written data access layer over pgx. Every
// method is a single request/response query; expected failures come back
// as errors (ErrNotFound for missing rows), never panics. All updates
// stamp updated_at.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a queried row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a stock adjustment would
	// drive a quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// wrapNotFound maps pgx.ErrNoRows onto the store's sentinel so callers
// never depend on the driver package.
func wrapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
