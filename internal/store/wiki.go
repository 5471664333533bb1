package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const wikiColumns = `id, title, slug, body, status, author_id, approved_by, tags,
	created_at, updated_at`

type CreateWikiArticleParams struct {
	Title    string
	Slug     string
	Body     string
	Status   string
	AuthorID uuid.UUID
	Tags     []string
}

func (s *Store) CreateWikiArticle(ctx context.Context, arg CreateWikiArticleParams) (*WikiArticle, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO wiki_articles (title, slug, body, status, author_id, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+wikiColumns,
		arg.Title, arg.Slug, arg.Body, arg.Status, arg.AuthorID, arg.Tags)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[WikiArticle])
	return a, wrapNotFound(err)
}

func (s *Store) GetWikiArticle(ctx context.Context, id uuid.UUID) (*WikiArticle, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+wikiColumns+` FROM wiki_articles WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[WikiArticle])
	return a, wrapNotFound(err)
}

func (s *Store) GetWikiArticleBySlug(ctx context.Context, slug string) (*WikiArticle, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+wikiColumns+` FROM wiki_articles WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[WikiArticle])
	return a, wrapNotFound(err)
}

func (s *Store) ListWikiArticles(ctx context.Context, limit, offset int64) ([]WikiArticle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+wikiColumns+` FROM wiki_articles ORDER BY updated_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[WikiArticle])
}

func (s *Store) ListWikiArticlesByStatus(ctx context.Context, status string, limit, offset int64) ([]WikiArticle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+wikiColumns+` FROM wiki_articles WHERE status = $1
		 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[WikiArticle])
}

func (s *Store) CountWikiArticles(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM wiki_articles`).Scan(&n)
	return n, err
}

type UpdateWikiArticleParams struct {
	ID    uuid.UUID
	Title string
	Body  string
	Tags  []string
}

func (s *Store) UpdateWikiArticle(ctx context.Context, arg UpdateWikiArticleParams) (*WikiArticle, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE wiki_articles
		SET title = $2, body = $3, tags = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+wikiColumns,
		arg.ID, arg.Title, arg.Body, arg.Tags)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[WikiArticle])
	return a, wrapNotFound(err)
}

func (s *Store) UpdateWikiArticleStatus(ctx context.Context, id uuid.UUID, status string, approvedBy *uuid.UUID) (*WikiArticle, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE wiki_articles
		SET status = $2, approved_by = COALESCE($3, approved_by), updated_at = now()
		WHERE id = $1
		RETURNING `+wikiColumns,
		id, status, approvedBy)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[WikiArticle])
	return a, wrapNotFound(err)
}

func (s *Store) DeleteWikiArticle(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wiki_articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
