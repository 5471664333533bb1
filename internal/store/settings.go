package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const settingColumns = `key, value, updated_at`

func (s *Store) GetSetting(ctx context.Context, key string) (*Setting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+settingColumns+` FROM app_settings WHERE key = $1`, key)
	if err != nil {
		return nil, err
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Setting])
	return st, wrapNotFound(err)
}

func (s *Store) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+settingColumns+` FROM app_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Setting])
}

func (s *Store) UpsertSetting(ctx context.Context, key, value string) (*Setting, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO app_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING `+settingColumns,
		key, value)
	if err != nil {
		return nil, err
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Setting])
	return st, wrapNotFound(err)
}
