package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, name, company, contact_name, contact_email, contact_phone,
	address, created_at, updated_at`

type ClientParams struct {
	Name         string
	Company      *string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	Address      *string
}

func (s *Store) CreateClient(ctx context.Context, arg ClientParams) (*Client, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO clients (name, company, contact_name, contact_email, contact_phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		arg.Name, arg.Company, arg.ContactName, arg.ContactEmail, arg.ContactPhone, arg.Address)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Client])
	return c, wrapNotFound(err)
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Client])
	return c, wrapNotFound(err)
}

func (s *Store) ListClients(ctx context.Context, limit, offset int64) ([]Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Client])
}

func (s *Store) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM clients`).Scan(&n)
	return n, err
}

func (s *Store) UpdateClient(ctx context.Context, id uuid.UUID, arg ClientParams) (*Client, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE clients
		SET name = $2, company = $3, contact_name = $4, contact_email = $5,
			contact_phone = $6, address = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+clientColumns,
		id, arg.Name, arg.Company, arg.ContactName, arg.ContactEmail, arg.ContactPhone, arg.Address)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Client])
	return c, wrapNotFound(err)
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Departments

const departmentColumns = `id, client_id, name, created_at, updated_at`

func (s *Store) CreateDepartment(ctx context.Context, clientID uuid.UUID, name string) (*Department, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO departments (client_id, name) VALUES ($1, $2)
		RETURNING `+departmentColumns,
		clientID, name)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Department])
	return d, wrapNotFound(err)
}

func (s *Store) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Department])
	return d, wrapNotFound(err)
}

func (s *Store) ListDepartmentsByClient(ctx context.Context, clientID uuid.UUID) ([]Department, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE client_id = $1 ORDER BY name`,
		clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Department])
}

func (s *Store) UpdateDepartment(ctx context.Context, id uuid.UUID, name string) (*Department, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE departments SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+departmentColumns,
		id, name)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Department])
	return d, wrapNotFound(err)
}

func (s *Store) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
