package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

type tonerModelResponse struct {
	ID               uuid.UUID `json:"id"`
	Make             string    `json:"make"`
	Model            string    `json:"model"`
	Color            string    `json:"color"`
	CompatibleSeries []string  `json:"compatible_series"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toTonerModelResponse(t *store.TonerModel) tonerModelResponse {
	series := t.CompatibleSeries
	if series == nil {
		series = []string{}
	}
	return tonerModelResponse{
		ID:               t.ID,
		Make:             t.Make,
		Model:            t.Model,
		Color:            t.Color,
		CompatibleSeries: series,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

type tonerStockResponse struct {
	TonerModelID uuid.UUID `json:"toner_model_id"`
	Quantity     int32     `json:"quantity"`
	ReorderLevel int32     `json:"reorder_level"`
	LowStock     bool      `json:"low_stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toTonerStockResponse(t *store.TonerStock) tonerStockResponse {
	return tonerStockResponse{
		TonerModelID: t.TonerModelID,
		Quantity:     t.Quantity,
		ReorderLevel: t.ReorderLevel,
		LowStock:     t.Quantity <= t.ReorderLevel,
		UpdatedAt:    t.UpdatedAt,
	}
}

type tonerModelRequest struct {
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Color            string   `json:"color"`
	CompatibleSeries []string `json:"compatible_series"`
}

func (r tonerModelRequest) validate() []ErrorDetail {
	var details []ErrorDetail
	if r.Make == "" {
		details = append(details, ErrorDetail{Field: "make", Message: "make is required"})
	}
	if r.Model == "" {
		details = append(details, ErrorDetail{Field: "model", Message: "model is required"})
	}
	if r.Color == "" {
		details = append(details, ErrorDetail{Field: "color", Message: "color is required"})
	}
	return details
}

func (s *Server) ListTonerModels(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	models, err := s.db.Store().ListTonerModels(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list toner models", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	total, err := s.db.Store().CountTonerModels(r.Context())
	if err != nil {
		logger.Error("Failed to count toner models", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]tonerModelResponse, len(models))
	for i := range models {
		out[i] = toTonerModelResponse(&models[i])
	}
	writeList(w, out, total, limit, offset)
}

func (s *Server) CreateTonerModel(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req tonerModelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	model, err := s.db.Store().CreateTonerModel(r.Context(), store.TonerModelParams{
		Make:             req.Make,
		Model:            req.Model,
		Color:            req.Color,
		CompatibleSeries: req.CompatibleSeries,
	})
	if err != nil {
		logger.Error("Failed to create toner model", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Toner model created", "toner_model_id", model.ID)
	writeJSON(w, http.StatusCreated, toTonerModelResponse(model))
}

func (s *Server) GetTonerModel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	model, err := s.db.Store().GetTonerModel(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Toner model")
		return
	}
	writeJSON(w, http.StatusOK, toTonerModelResponse(model))
}

func (s *Server) UpdateTonerModel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req tonerModelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	model, err := s.db.Store().UpdateTonerModel(r.Context(), id, store.TonerModelParams{
		Make:             req.Make,
		Model:            req.Model,
		Color:            req.Color,
		CompatibleSeries: req.CompatibleSeries,
	})
	if err != nil {
		respondError(w, r, err, "Toner model")
		return
	}
	writeJSON(w, http.StatusOK, toTonerModelResponse(model))
}

func (s *Server) DeleteTonerModel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.db.Store().DeleteTonerModel(r.Context(), id); err != nil {
		respondError(w, r, err, "Toner model")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) GetTonerStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	stock, err := s.db.Store().GetTonerStock(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Toner stock")
		return
	}
	writeJSON(w, http.StatusOK, toTonerStockResponse(stock))
}

type setStockRequest struct {
	Quantity     int32 `json:"quantity"`
	ReorderLevel int32 `json:"reorder_level"`
}

func (s *Server) SetTonerStock(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req setStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 0 || req.ReorderLevel < 0 {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "quantity", Message: "quantity and reorder level cannot be negative"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	if _, err := s.db.Store().GetTonerModel(r.Context(), id); err != nil {
		respondError(w, r, err, "Toner model")
		return
	}

	stock, err := s.db.Store().UpsertTonerStock(r.Context(), id, req.Quantity, req.ReorderLevel)
	if err != nil {
		logger.Error("Failed to set toner stock", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toTonerStockResponse(stock))
}

type adjustStockRequest struct {
	Delta int32 `json:"delta"`
}

func (s *Server) AdjustTonerStock(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req adjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "delta", Message: "delta cannot be zero"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	stock, err := s.db.Store().AdjustTonerStock(r.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			current, getErr := s.db.Store().GetTonerStock(r.Context(), id)
			available := 0
			if getErr == nil {
				available = int(current.Quantity)
			}
			model, _ := s.db.Store().GetTonerModel(r.Context(), id)
			name := ""
			if model != nil {
				name = model.Make + " " + model.Model
			}
			InsufficientStockErr(name, int(-req.Delta), available).Write(w, http.StatusConflict)
			return
		}
		respondError(w, r, err, "Toner stock")
		return
	}

	if stock.Quantity <= stock.ReorderLevel {
		s.notifyRole(r.Context(), user, rbac.RoleAdmin, "toner_stock", id,
			"Toner stock has dropped to or below its reorder level",
			"toner_low_stock", map[string]interface{}{
				"Quantity":     stock.Quantity,
				"ReorderLevel": stock.ReorderLevel,
			})
	}

	logger.Info("Toner stock adjusted", "toner_model_id", id, "delta", req.Delta, "quantity", stock.Quantity)
	writeJSON(w, http.StatusOK, toTonerStockResponse(stock))
}

func (s *Server) ListLowTonerStock(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	stocks, err := s.db.Store().ListLowTonerStock(r.Context())
	if err != nil {
		logger.Error("Failed to list low toner stock", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]tonerStockResponse, len(stocks))
	for i := range stocks {
		out[i] = toTonerStockResponse(&stocks[i])
	}
	writeList(w, out, int64(len(out)), int64(len(out)), 0)
}
