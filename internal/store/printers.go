package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const printerColumns = `id, make, series, model, serial_number, status, owned_by,
	assigned_to, client_id, department, location, is_for_rent, notes,
	created_at, updated_at`

type CreatePrinterParams struct {
	Make         string
	Series       string
	Model        string
	SerialNumber *string
	Status       string
	OwnedBy      string
	AssignedTo   *string
	ClientID     *uuid.UUID
	Department   *string
	Location     *string
	IsForRent    bool
	Notes        *string
}

func (s *Store) CreatePrinter(ctx context.Context, arg CreatePrinterParams) (*Printer, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO printers (make, series, model, serial_number, status, owned_by,
			assigned_to, client_id, department, location, is_for_rent, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+printerColumns,
		arg.Make, arg.Series, arg.Model, arg.SerialNumber, arg.Status, arg.OwnedBy,
		arg.AssignedTo, arg.ClientID, arg.Department, arg.Location, arg.IsForRent, arg.Notes)
	if err != nil {
		return nil, fmt.Errorf("insert printer: %w", err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

func (s *Store) GetPrinter(ctx context.Context, id uuid.UUID) (*Printer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+printerColumns+` FROM printers WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

func (s *Store) ListPrinters(ctx context.Context, limit, offset int64) ([]Printer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+printerColumns+` FROM printers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Printer])
}

func (s *Store) ListPrintersByStatus(ctx context.Context, status string, limit, offset int64) ([]Printer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+printerColumns+` FROM printers WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Printer])
}

func (s *Store) ListPrintersByClient(ctx context.Context, clientID uuid.UUID) ([]Printer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+printerColumns+` FROM printers WHERE client_id = $1 ORDER BY created_at DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Printer])
}

// ListRentablePrinters backs the public storefront: for-rent units that
// are currently available.
func (s *Store) ListRentablePrinters(ctx context.Context, limit, offset int64) ([]Printer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+printerColumns+` FROM printers
		 WHERE is_for_rent AND status = 'available'
		 ORDER BY make, model LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Printer])
}

func (s *Store) CountPrinters(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM printers`).Scan(&n)
	return n, err
}

func (s *Store) CountPrintersByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM printers WHERE status = $1`, status).Scan(&n)
	return n, err
}

type UpdatePrinterParams struct {
	ID           uuid.UUID
	Make         string
	Series       string
	Model        string
	SerialNumber *string
	Location     *string
	IsForRent    bool
	Notes        *string
}

// UpdatePrinter edits catalog fields only. Status and assignment fields
// move through their dedicated operations so the fleet state machine
// stays the single writer.
func (s *Store) UpdatePrinter(ctx context.Context, arg UpdatePrinterParams) (*Printer, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE printers
		SET make = $2, series = $3, model = $4, serial_number = $5,
			location = $6, is_for_rent = $7, notes = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+printerColumns,
		arg.ID, arg.Make, arg.Series, arg.Model, arg.SerialNumber,
		arg.Location, arg.IsForRent, arg.Notes)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

type UpdatePrinterAssignmentParams struct {
	ID         uuid.UUID
	OwnedBy    string
	AssignedTo *string
	ClientID   *uuid.UUID
	Department *string
}

func (s *Store) UpdatePrinterAssignment(ctx context.Context, arg UpdatePrinterAssignmentParams) (*Printer, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE printers
		SET owned_by = $2, assigned_to = $3, client_id = $4, department = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING `+printerColumns,
		arg.ID, arg.OwnedBy, arg.AssignedTo, arg.ClientID, arg.Department)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

func (s *Store) UpdatePrinterStatus(ctx context.Context, id uuid.UUID, status string) (*Printer, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE printers SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+printerColumns,
		id, status)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

// UpdatePrinterStatusNotes writes status and the full notes text in one
// statement. Used by mark-repaired, which appends a dated line to the log.
func (s *Store) UpdatePrinterStatusNotes(ctx context.Context, id uuid.UUID, status, notes string) (*Printer, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE printers SET status = $2, notes = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+printerColumns,
		id, status, notes)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Printer])
	return p, wrapNotFound(err)
}

// CountPrinterReferences reports how many rentals and maintenance records
// still point at the printer. Deletion is refused while this is non-zero.
func (s *Store) CountPrinterReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM rentals WHERE printer_id = $1)
		     + (SELECT count(*) FROM maintenance_records WHERE printer_id = $1)`,
		id).Scan(&n)
	return n, err
}

func (s *Store) DeletePrinter(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM printers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
