package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/store"
)

type notificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    uuid.UUID  `json:"actor_id"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Message    string     `json:"message"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toNotificationResponse(n *store.Notification) notificationResponse {
	return notificationResponse{
		ID:         n.ID,
		ActorID:    n.ActorID,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Message:    n.Message,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

type notificationListResponse struct {
	Data        []notificationResponse `json:"data"`
	UnreadCount int64                  `json:"unread_count"`
	Meta        PaginationMeta         `json:"meta"`
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}
	limit, offset := parsePagination(r)

	rows, err := s.db.Store().ListNotifications(r.Context(), user.ID, limit, offset)
	if err != nil {
		logger.Error("Failed to list notifications", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	unread, err := s.db.Store().CountUnreadNotifications(r.Context(), user.ID)
	if err != nil {
		logger.Error("Failed to count unread notifications", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]notificationResponse, len(rows))
	for i := range rows {
		out[i] = toNotificationResponse(&rows[i])
	}
	writeJSON(w, http.StatusOK, notificationListResponse{
		Data:        out,
		UnreadCount: unread,
		Meta: PaginationMeta{
			Total:   len(out),
			Limit:   int(limit),
			Offset:  int(offset),
			HasMore: len(out) == int(limit),
		},
	})
}

func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}
	id, okID := parseIDParam(w, r, "id")
	if !okID {
		return
	}

	notification, err := s.db.Store().MarkNotificationRead(r.Context(), id, user.ID)
	if err != nil {
		respondError(w, r, err, "Notification")
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponse(notification))
}

func (s *Server) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	if err := s.db.Store().MarkAllNotificationsRead(r.Context(), user.ID); err != nil {
		logger.Error("Failed to mark notifications read", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
