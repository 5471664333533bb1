package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/store"
)

type clientResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Company      *string   `json:"company,omitempty"`
	ContactName  *string   `json:"contact_name,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toClientResponse(c *store.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Company:      c.Company,
		ContactName:  c.ContactName,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Address:      c.Address,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type clientRequest struct {
	Name         string  `json:"name"`
	Company      *string `json:"company,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

func (s *Server) ListClients(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	clients, err := s.db.Store().ListClients(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list clients", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	total, err := s.db.Store().CountClients(r.Context())
	if err != nil {
		logger.Error("Failed to count clients", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]clientResponse, len(clients))
	for i := range clients {
		out[i] = toClientResponse(&clients[i])
	}
	writeList(w, out, total, limit, offset)
}

func (s *Server) CreateClient(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	client, err := s.db.Store().CreateClient(r.Context(), store.ClientParams{
		Name:         req.Name,
		Company:      req.Company,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Client created", "client_id", client.ID)
	writeJSON(w, http.StatusCreated, toClientResponse(client))
}

func (s *Server) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	client, err := s.db.Store().GetClient(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Client")
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client))
}

func (s *Server) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	client, err := s.db.Store().UpdateClient(r.Context(), id, store.ClientParams{
		Name:         req.Name,
		Company:      req.Company,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		respondError(w, r, err, "Client")
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client))
}

func (s *Server) DeleteClient(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	// Refuse while printers still point at this client.
	printers, err := s.db.Store().ListPrintersByClient(r.Context(), id)
	if err != nil {
		logger.Error("Failed to check client printers", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	if len(printers) > 0 {
		Conflict("Client still has printers assigned").
			WithContext(ErrorContext{"printers": len(printers)}).
			Write(w, http.StatusConflict)
		return
	}

	if err := s.db.Store().DeleteClient(r.Context(), id); err != nil {
		respondError(w, r, err, "Client")
		return
	}
	logger.Info("Client deleted", "client_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}

type departmentResponse struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDepartmentResponse(d *store.Department) departmentResponse {
	return departmentResponse{
		ID:        d.ID,
		ClientID:  d.ClientID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type departmentRequest struct {
	Name string `json:"name"`
}

func (s *Server) ListDepartments(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	departments, err := s.db.Store().ListDepartmentsByClient(r.Context(), id)
	if err != nil {
		logger.Error("Failed to list departments", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]departmentResponse, len(departments))
	for i := range departments {
		out[i] = toDepartmentResponse(&departments[i])
	}
	writeList(w, out, int64(len(out)), int64(len(out)), 0)
}

func (s *Server) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req departmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	// The client must exist before hanging a department off it.
	if _, err := s.db.Store().GetClient(r.Context(), id); err != nil {
		respondError(w, r, err, "Client")
		return
	}

	department, err := s.db.Store().CreateDepartment(r.Context(), id, req.Name)
	if err != nil {
		logger.Error("Failed to create department", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Department created", "client_id", id, "department_id", department.ID)
	writeJSON(w, http.StatusCreated, toDepartmentResponse(department))
}

func (s *Server) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	deptID, ok := parseIDParam(w, r, "deptID")
	if !ok {
		return
	}

	var req departmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	department, err := s.db.Store().UpdateDepartment(r.Context(), deptID, req.Name)
	if err != nil {
		respondError(w, r, err, "Department")
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentResponse(department))
}

func (s *Server) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	deptID, ok := parseIDParam(w, r, "deptID")
	if !ok {
		return
	}

	if err := s.db.Store().DeleteDepartment(r.Context(), deptID); err != nil {
		respondError(w, r, err, "Department")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) ListClientPrinters(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	printers, err := s.db.Store().ListPrintersByClient(r.Context(), id)
	if err != nil {
		logger.Error("Failed to list client printers", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeList(w, toPrinterResponses(printers), int64(len(printers)), int64(len(printers)), 0)
}
