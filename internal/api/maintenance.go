package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/store"
)

type maintenanceResponse struct {
	ID               uuid.UUID  `json:"id"`
	PrinterID        uuid.UUID  `json:"printer_id"`
	IssueDescription string     `json:"issue_description"`
	RepairNotes      *string    `json:"repair_notes,omitempty"`
	Status           string     `json:"status"`
	ActivityType     string     `json:"activity_type"`
	Technician       *string    `json:"technician,omitempty"`
	ReportedAt       time.Time  `json:"reported_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Remarks          *string    `json:"remarks,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toMaintenanceResponse(rec *store.MaintenanceRecord) maintenanceResponse {
	return maintenanceResponse{
		ID:               rec.ID,
		PrinterID:        rec.PrinterID,
		IssueDescription: rec.IssueDescription,
		RepairNotes:      rec.RepairNotes,
		Status:           rec.Status,
		ActivityType:     rec.ActivityType,
		Technician:       rec.Technician,
		ReportedAt:       rec.ReportedAt,
		StartedAt:        rec.StartedAt,
		CompletedAt:      rec.CompletedAt,
		Remarks:          rec.Remarks,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func toMaintenanceResponses(records []store.MaintenanceRecord) []maintenanceResponse {
	out := make([]maintenanceResponse, len(records))
	for i := range records {
		out[i] = toMaintenanceResponse(&records[i])
	}
	return out
}

func (s *Server) ListMaintenanceRecords(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	records, err := s.db.Store().ListMaintenanceRecords(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list maintenance records", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	total, err := s.db.Store().CountMaintenanceRecords(r.Context())
	if err != nil {
		logger.Error("Failed to count maintenance records", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeList(w, toMaintenanceResponses(records), total, limit, offset)
}

type maintenanceCreateRequest struct {
	PrinterID        uuid.UUID `json:"printer_id"`
	IssueDescription string    `json:"issue_description"`
	Status           *string   `json:"status,omitempty"`
	RepairNotes      *string   `json:"repair_notes,omitempty"`
	Technician       *string   `json:"technician,omitempty"`
	Remarks          *string   `json:"remarks,omitempty"`
}

// CreateMaintenanceRecord files a record against any printer without
// changing the printer's status; the nested printer route is the one
// that pulls a unit out of service.
func (s *Server) CreateMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req maintenanceCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PrinterID == uuid.Nil {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "printer_id", Message: "printer_id is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	params := fleet.CreateMaintenanceParams{
		PrinterID:        req.PrinterID,
		IssueDescription: req.IssueDescription,
		RepairNotes:      req.RepairNotes,
		Technician:       req.Technician,
		Remarks:          req.Remarks,
	}
	if req.Status != nil {
		params.Status = fleet.MaintenanceStatus(*req.Status)
	}

	record, err := s.fleet.CreateMaintenance(r.Context(), params)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Maintenance record created", "record_id", record.ID, "printer_id", req.PrinterID)
	writeJSON(w, http.StatusCreated, toMaintenanceResponse(record))
}

func (s *Server) GetMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	record, err := s.db.Store().GetMaintenanceRecord(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Maintenance record")
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceResponse(record))
}

type maintenanceUpdateRequest struct {
	IssueDescription string  `json:"issue_description"`
	RepairNotes      *string `json:"repair_notes,omitempty"`
	Technician       *string `json:"technician,omitempty"`
	Remarks          *string `json:"remarks,omitempty"`
}

func (s *Server) UpdateMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req maintenanceUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IssueDescription == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "issue_description", Message: "issue description is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	record, err := s.db.Store().UpdateMaintenanceRecord(r.Context(), store.UpdateMaintenanceRecordParams{
		ID:               id,
		IssueDescription: req.IssueDescription,
		RepairNotes:      req.RepairNotes,
		Technician:       req.Technician,
		Remarks:          req.Remarks,
	})
	if err != nil {
		respondError(w, r, err, "Maintenance record")
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceResponse(record))
}

func (s *Server) AdvanceMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := s.fleet.AdvanceMaintenance(r.Context(), id, fleet.MaintenanceStatus(req.Status))
	if err != nil {
		respondError(w, r, err, "Maintenance record")
		return
	}

	logger.Info("Maintenance record advanced", "record_id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, toMaintenanceResponse(record))
}

func (s *Server) DeleteMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.db.Store().DeleteMaintenanceRecord(r.Context(), id); err != nil {
		respondError(w, r, err, "Maintenance record")
		return
	}
	logger.Info("Maintenance record deleted", "record_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}
