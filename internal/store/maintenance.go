package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maintenanceColumns = `id, printer_id, issue_description, repair_notes, status,
	activity_type, technician, reported_at, started_at, completed_at, remarks,
	created_at, updated_at`

type CreateMaintenanceRecordParams struct {
	PrinterID        uuid.UUID
	IssueDescription string
	RepairNotes      *string
	Status           string
	ActivityType     string
	Technician       *string
	ReportedAt       time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	Remarks          *string
}

func (s *Store) CreateMaintenanceRecord(ctx context.Context, arg CreateMaintenanceRecordParams) (*MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO maintenance_records (printer_id, issue_description, repair_notes,
			status, activity_type, technician, reported_at, started_at, completed_at, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+maintenanceColumns,
		arg.PrinterID, arg.IssueDescription, arg.RepairNotes, arg.Status,
		arg.ActivityType, arg.Technician, arg.ReportedAt, arg.StartedAt,
		arg.CompletedAt, arg.Remarks)
	if err != nil {
		return nil, fmt.Errorf("insert maintenance record: %w", err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MaintenanceRecord])
	return rec, wrapNotFound(err)
}

func (s *Store) GetMaintenanceRecord(ctx context.Context, id uuid.UUID) (*MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MaintenanceRecord])
	return rec, wrapNotFound(err)
}

func (s *Store) ListMaintenanceRecords(ctx context.Context, limit, offset int64) ([]MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records
		 ORDER BY reported_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[MaintenanceRecord])
}

func (s *Store) ListMaintenanceRecordsByPrinter(ctx context.Context, printerID uuid.UUID) ([]MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records
		 WHERE printer_id = $1 ORDER BY reported_at DESC`,
		printerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[MaintenanceRecord])
}

func (s *Store) CountMaintenanceRecords(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM maintenance_records`).Scan(&n)
	return n, err
}

type UpdateMaintenanceRecordParams struct {
	ID               uuid.UUID
	IssueDescription string
	RepairNotes      *string
	Technician       *string
	Remarks          *string
}

func (s *Store) UpdateMaintenanceRecord(ctx context.Context, arg UpdateMaintenanceRecordParams) (*MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE maintenance_records
		SET issue_description = $2, repair_notes = $3, technician = $4,
			remarks = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+maintenanceColumns,
		arg.ID, arg.IssueDescription, arg.RepairNotes, arg.Technician, arg.Remarks)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MaintenanceRecord])
	return rec, wrapNotFound(err)
}

type UpdateMaintenanceStatusParams struct {
	ID          uuid.UUID
	Status      string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// UpdateMaintenanceStatus writes the new status and, when provided, the
// started/completed stamps. COALESCE keeps an existing stamp when the
// caller passes nil.
func (s *Store) UpdateMaintenanceStatus(ctx context.Context, arg UpdateMaintenanceStatusParams) (*MaintenanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE maintenance_records
		SET status = $2,
			started_at = COALESCE($3, started_at),
			completed_at = COALESCE($4, completed_at),
			updated_at = now()
		WHERE id = $1
		RETURNING `+maintenanceColumns,
		arg.ID, arg.Status, arg.StartedAt, arg.CompletedAt)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MaintenanceRecord])
	return rec, wrapNotFound(err)
}

func (s *Store) DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
