package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printdesk/pd-backend/internal/middleware"
)

type settingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) ListSettings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	rows, err := s.db.Store().ListSettings(r.Context())
	if err != nil {
		logger.Error("Failed to list settings", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]settingResponse, len(rows))
	for i, row := range rows {
		out[i] = settingResponse{Key: row.Key, Value: row.Value, UpdatedAt: row.UpdatedAt}
	}
	writeList(w, out, int64(len(out)), int64(len(out)), 0)
}

type settingRequest struct {
	Value string `json:"value"`
}

func (s *Server) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	key := chi.URLParam(r, "key")
	if key == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "key", Message: "key is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	var req settingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	setting, err := s.db.Store().UpsertSetting(r.Context(), key, req.Value)
	if err != nil {
		logger.Error("Failed to update setting", "key", key, "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	// Every instance refreshes its cache off this broadcast.
	if err := s.settings.Broadcast(r.Context()); err != nil {
		logger.Error("Failed to broadcast settings change", "error", err)
	}

	logger.Info("Setting updated", "key", key)
	writeJSON(w, http.StatusOK, settingResponse{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedAt: setting.UpdatedAt,
	})
}
