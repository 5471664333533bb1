package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/store"
)

type NotificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// Publish writes one in-app notification per recipient. The actor never
// notifies themselves.
func (s *NotificationService) Publish(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, message string, notifierIDs []uuid.UUID) error {
	for _, notifierID := range notifierIDs {
		if notifierID == actorID {
			continue
		}
		_, err := s.store.CreateNotification(ctx, store.CreateNotificationParams{
			RecipientID: notifierID,
			ActorID:     actorID,
			EntityType:  entityType,
			EntityID:    entityID,
			Message:     message,
		})
		if err != nil {
			return fmt.Errorf("failed to create notification for %s: %w", notifierID, err)
		}
	}
	return nil
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int64) ([]store.Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*store.Notification, error) {
	return s.store.MarkNotificationRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}
