package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tonerModelColumns = `id, make, model, color, compatible_series, created_at, updated_at`
const tonerStockColumns = `id, toner_model_id, quantity, reorder_level, created_at, updated_at`

type TonerModelParams struct {
	Make             string
	Model            string
	Color            string
	CompatibleSeries []string
}

func (s *Store) CreateTonerModel(ctx context.Context, arg TonerModelParams) (*TonerModel, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO toner_models (make, model, color, compatible_series)
		VALUES ($1, $2, $3, $4)
		RETURNING `+tonerModelColumns,
		arg.Make, arg.Model, arg.Color, arg.CompatibleSeries)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerModel])
	return m, wrapNotFound(err)
}

func (s *Store) GetTonerModel(ctx context.Context, id uuid.UUID) (*TonerModel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tonerModelColumns+` FROM toner_models WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerModel])
	return m, wrapNotFound(err)
}

func (s *Store) ListTonerModels(ctx context.Context, limit, offset int64) ([]TonerModel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tonerModelColumns+` FROM toner_models ORDER BY make, model LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[TonerModel])
}

func (s *Store) CountTonerModels(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM toner_models`).Scan(&n)
	return n, err
}

func (s *Store) UpdateTonerModel(ctx context.Context, id uuid.UUID, arg TonerModelParams) (*TonerModel, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE toner_models
		SET make = $2, model = $3, color = $4, compatible_series = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+tonerModelColumns,
		id, arg.Make, arg.Model, arg.Color, arg.CompatibleSeries)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerModel])
	return m, wrapNotFound(err)
}

func (s *Store) DeleteTonerModel(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM toner_models WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetTonerStock(ctx context.Context, tonerModelID uuid.UUID) (*TonerStock, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tonerStockColumns+` FROM toner_stock WHERE toner_model_id = $1`, tonerModelID)
	if err != nil {
		return nil, err
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerStock])
	return st, wrapNotFound(err)
}

func (s *Store) UpsertTonerStock(ctx context.Context, tonerModelID uuid.UUID, quantity, reorderLevel int32) (*TonerStock, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO toner_stock (toner_model_id, quantity, reorder_level)
		VALUES ($1, $2, $3)
		ON CONFLICT (toner_model_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			reorder_level = EXCLUDED.reorder_level, updated_at = now()
		RETURNING `+tonerStockColumns,
		tonerModelID, quantity, reorderLevel)
	if err != nil {
		return nil, err
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerStock])
	return st, wrapNotFound(err)
}

// AdjustTonerStock applies a signed delta atomically. The WHERE guard
// refuses adjustments that would drive quantity negative.
func (s *Store) AdjustTonerStock(ctx context.Context, tonerModelID uuid.UUID, delta int32) (*TonerStock, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE toner_stock
		SET quantity = quantity + $2, updated_at = now()
		WHERE toner_model_id = $1 AND quantity + $2 >= 0
		RETURNING `+tonerStockColumns,
		tonerModelID, delta)
	if err != nil {
		return nil, err
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[TonerStock])
	if err != nil {
		// Distinguish "no such stock row" from "would go negative".
		if wrapNotFound(err) == ErrNotFound {
			if _, getErr := s.GetTonerStock(ctx, tonerModelID); getErr == nil {
				return nil, ErrInsufficientStock
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

func (s *Store) ListLowTonerStock(ctx context.Context) ([]TonerStock, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tonerStockColumns+` FROM toner_stock WHERE quantity <= reorder_level ORDER BY quantity`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[TonerStock])
}
