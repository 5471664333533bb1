package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, email, password_hash, first_name, last_name, role,
	department, created_at, updated_at`

type CreateProfileParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	Department   *string
}

func (s *Store) CreateProfile(ctx context.Context, arg CreateProfileParams) (*Profile, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO profiles (email, password_hash, first_name, last_name, role, department)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+profileColumns,
		arg.Email, arg.PasswordHash, arg.FirstName, arg.LastName, arg.Role, arg.Department)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Profile])
	return p, wrapNotFound(err)
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Profile])
	return p, wrapNotFound(err)
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Profile])
	return p, wrapNotFound(err)
}

func (s *Store) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Profile])
}

func (s *Store) ListProfiles(ctx context.Context, limit, offset int64) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY email LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Profile])
}

// ListProfilesByRole backs notification fan-out (e.g. every admin).
func (s *Store) ListProfilesByRole(ctx context.Context, role string) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE role = $1 ORDER BY email`, role)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Profile])
}

func (s *Store) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&n)
	return n, err
}

type UpdateProfileParams struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Role       string
	Department *string
}

func (s *Store) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (*Profile, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE profiles
		SET first_name = $2, last_name = $3, role = $4, department = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		arg.ID, arg.FirstName, arg.LastName, arg.Role, arg.Department)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Profile])
	return p, wrapNotFound(err)
}

func (s *Store) UpdateProfilePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
