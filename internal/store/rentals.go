package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const rentalColumns = `id, printer_id, client_id, department, status, monthly_rate,
	starts_on, ends_on, returned_at, notes, created_at, updated_at`

type CreateRentalParams struct {
	PrinterID   uuid.UUID
	ClientID    uuid.UUID
	Department  *string
	Status      string
	MonthlyRate float64
	StartsOn    time.Time
	EndsOn      *time.Time
	Notes       *string
}

func (s *Store) CreateRental(ctx context.Context, arg CreateRentalParams) (*Rental, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO rentals (printer_id, client_id, department, status, monthly_rate,
			starts_on, ends_on, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+rentalColumns,
		arg.PrinterID, arg.ClientID, arg.Department, arg.Status, arg.MonthlyRate,
		arg.StartsOn, arg.EndsOn, arg.Notes)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Rental])
	return r, wrapNotFound(err)
}

func (s *Store) GetRental(ctx context.Context, id uuid.UUID) (*Rental, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Rental])
	return r, wrapNotFound(err)
}

func (s *Store) ListRentals(ctx context.Context, limit, offset int64) ([]Rental, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+rentalColumns+` FROM rentals ORDER BY starts_on DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Rental])
}

func (s *Store) ListRentalsByClient(ctx context.Context, clientID uuid.UUID) ([]Rental, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE client_id = $1 ORDER BY starts_on DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Rental])
}

func (s *Store) CountRentals(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM rentals`).Scan(&n)
	return n, err
}

type UpdateRentalParams struct {
	ID          uuid.UUID
	Department  *string
	MonthlyRate float64
	StartsOn    time.Time
	EndsOn      *time.Time
	Notes       *string
}

func (s *Store) UpdateRental(ctx context.Context, arg UpdateRentalParams) (*Rental, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE rentals
		SET department = $2, monthly_rate = $3, starts_on = $4, ends_on = $5,
			notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+rentalColumns,
		arg.ID, arg.Department, arg.MonthlyRate, arg.StartsOn, arg.EndsOn, arg.Notes)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Rental])
	return r, wrapNotFound(err)
}

func (s *Store) UpdateRentalStatus(ctx context.Context, id uuid.UUID, status string, returnedAt *time.Time) (*Rental, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE rentals
		SET status = $2, returned_at = COALESCE($3, returned_at), updated_at = now()
		WHERE id = $1
		RETURNING `+rentalColumns,
		id, status, returnedAt)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Rental])
	return r, wrapNotFound(err)
}

func (s *Store) DeleteRental(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
