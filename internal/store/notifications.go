package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, recipient_id, actor_id, entity_type, entity_id,
	message, read_at, created_at`

type CreateNotificationParams struct {
	RecipientID uuid.UUID
	ActorID     uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	Message     string
}

func (s *Store) CreateNotification(ctx context.Context, arg CreateNotificationParams) (*Notification, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO notifications (recipient_id, actor_id, entity_type, entity_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		arg.RecipientID, arg.ActorID, arg.EntityType, arg.EntityID, arg.Message)
	if err != nil {
		return nil, err
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Notification])
	return n, wrapNotFound(err)
}

func (s *Store) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit, offset int64) ([]Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Notification])
}

func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL`,
		recipientID).Scan(&n)
	return n, err
}

// MarkNotificationRead is scoped by recipient so users cannot touch each
// other's notifications.
func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID) (*Notification, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE id = $1 AND recipient_id = $2
		RETURNING `+notificationColumns,
		id, recipientID)
	if err != nil {
		return nil, err
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Notification])
	return n, wrapNotFound(err)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read_at = now() WHERE recipient_id = $1 AND read_at IS NULL`,
		recipientID)
	return err
}
