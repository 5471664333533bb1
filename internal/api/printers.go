package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/store"
)

type printerResponse struct {
	ID            uuid.UUID  `json:"id"`
	Make          string     `json:"make"`
	Series        string     `json:"series"`
	Model         string     `json:"model"`
	SerialNumber  *string    `json:"serial_number,omitempty"`
	Status        string     `json:"status"`
	DisplayStatus string     `json:"display_status"`
	OwnedBy       string     `json:"owned_by"`
	AssignedTo    *string    `json:"assigned_to,omitempty"`
	ClientID      *uuid.UUID `json:"client_id,omitempty"`
	Department    *string    `json:"department,omitempty"`
	Location      *string    `json:"location,omitempty"`
	IsForRent     bool       `json:"is_for_rent"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toPrinterResponse(p *store.Printer) printerResponse {
	return printerResponse{
		ID:            p.ID,
		Make:          p.Make,
		Series:        p.Series,
		Model:         p.Model,
		SerialNumber:  p.SerialNumber,
		Status:        p.Status,
		DisplayStatus: fleet.DisplayStatus(p),
		OwnedBy:       p.OwnedBy,
		AssignedTo:    p.AssignedTo,
		ClientID:      p.ClientID,
		Department:    p.Department,
		Location:      p.Location,
		IsForRent:     p.IsForRent,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPrinterResponses(printers []store.Printer) []printerResponse {
	out := make([]printerResponse, len(printers))
	for i := range printers {
		out[i] = toPrinterResponse(&printers[i])
	}
	return out
}

func (s *Server) ListPrinters(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	var (
		printers []store.Printer
		total    int64
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		if !fleet.Status(status).Selectable() {
			ValidationErr("Unknown status filter", []ErrorDetail{
				{Field: "status", Message: "must be a selectable printer status"},
			}).Write(w, http.StatusBadRequest)
			return
		}
		printers, err = s.db.Store().ListPrintersByStatus(r.Context(), status, limit, offset)
		if err == nil {
			total, err = s.db.Store().CountPrintersByStatus(r.Context(), status)
		}
	} else {
		printers, err = s.db.Store().ListPrinters(r.Context(), limit, offset)
		if err == nil {
			total, err = s.db.Store().CountPrinters(r.Context())
		}
	}
	if err != nil {
		logger.Error("Failed to list printers", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeList(w, toPrinterResponses(printers), total, limit, offset)
}

type printerRequest struct {
	Make         string  `json:"make"`
	Series       string  `json:"series"`
	Model        string  `json:"model"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Location     *string `json:"location,omitempty"`
	IsForRent    bool    `json:"is_for_rent"`
	Notes        *string `json:"notes,omitempty"`
}

func (r printerRequest) validate() []ErrorDetail {
	var details []ErrorDetail
	if r.Make == "" {
		details = append(details, ErrorDetail{Field: "make", Message: "make is required"})
	}
	if r.Series == "" {
		details = append(details, ErrorDetail{Field: "series", Message: "series is required"})
	}
	if r.Model == "" {
		details = append(details, ErrorDetail{Field: "model", Message: "model is required"})
	}
	return details
}

func (s *Server) CreatePrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req printerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	// New units always enter the pool available and system-owned;
	// ownership and status move through the fleet service afterwards.
	printer, err := s.db.Store().CreatePrinter(r.Context(), store.CreatePrinterParams{
		Make:         req.Make,
		Series:       req.Series,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Status:       string(fleet.StatusAvailable),
		OwnedBy:      string(fleet.OwnedBySystem),
		Location:     req.Location,
		IsForRent:    req.IsForRent,
		Notes:        req.Notes,
	})
	if err != nil {
		logger.Error("Failed to create printer", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Printer created", "printer_id", printer.ID)
	writeJSON(w, http.StatusCreated, toPrinterResponse(printer))
}

func (s *Server) GetPrinter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	printer, err := s.db.Store().GetPrinter(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

func (s *Server) UpdatePrinter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req printerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	printer, err := s.db.Store().UpdatePrinter(r.Context(), store.UpdatePrinterParams{
		ID:           id,
		Make:         req.Make,
		Series:       req.Series,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		IsForRent:    req.IsForRent,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

func (s *Server) DeletePrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	refs, err := s.db.Store().CountPrinterReferences(r.Context(), id)
	if err != nil {
		logger.Error("Failed to count printer references", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	if refs > 0 {
		Conflict("Printer is referenced by rentals or maintenance records").
			WithContext(ErrorContext{"references": refs}).
			Write(w, http.StatusConflict)
		return
	}

	if err := s.db.Store().DeletePrinter(r.Context(), id); err != nil {
		respondError(w, r, err, "Printer")
		return
	}
	logger.Info("Printer deleted", "printer_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}

type assignRequest struct {
	ClientID     uuid.UUID  `json:"client_id"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

func (s *Server) AssignPrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	printer, err := s.fleet.Assign(r.Context(), id, fleet.AssignParams{
		ClientID:     req.ClientID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Printer assigned", "printer_id", id, "client_id", req.ClientID)
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

func (s *Server) TransferPrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	printer, err := s.fleet.Transfer(r.Context(), id, fleet.AssignParams{
		ClientID:     req.ClientID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Printer transferred", "printer_id", id, "client_id", req.ClientID)
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

func (s *Server) ReclaimPrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	printer, err := s.fleet.Reclaim(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Printer reclaimed to system pool", "printer_id", id)
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdatePrinterStatus(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	printer, err := s.fleet.UpdateStatus(r.Context(), id, fleet.Status(req.Status))
	if err != nil {
		// A same-status submission surfaces as the "No changes to
		// apply" conflict, never as a silent success.
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Printer status updated", "printer_id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, toPrinterResponse(printer))
}

type markRepairedRequest struct {
	Reason     string  `json:"reason"`
	Solution   string  `json:"solution"`
	Technician *string `json:"technician,omitempty"`
}

type markRepairedResponse struct {
	Printer printerResponse     `json:"printer"`
	Record  maintenanceResponse `json:"record"`
}

func (s *Server) MarkPrinterRepaired(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req markRepairedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	printer, record, err := s.fleet.MarkRepaired(r.Context(), id, fleet.MarkRepairedParams{
		Reason:     req.Reason,
		Solution:   req.Solution,
		Technician: req.Technician,
	})
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Printer marked repaired", "printer_id", id, "record_id", record.ID)
	writeJSON(w, http.StatusOK, markRepairedResponse{
		Printer: toPrinterResponse(printer),
		Record:  toMaintenanceResponse(record),
	})
}

type serviceReportRequest struct {
	Summary    string  `json:"summary"`
	Technician *string `json:"technician,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

func (s *Server) FileServiceReport(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req serviceReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := s.fleet.ServiceReport(r.Context(), id, fleet.ServiceReportParams{
		Summary:    req.Summary,
		Technician: req.Technician,
		Remarks:    req.Remarks,
	})
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Service report filed", "printer_id", id, "record_id", record.ID)
	writeJSON(w, http.StatusCreated, toMaintenanceResponse(record))
}

type quickUpdateRequest struct {
	Technician    string   `json:"technician"`
	ProblemCodes  []string `json:"problem_codes"`
	SolutionCodes []string `json:"solution_codes"`
	NewStatus     *string  `json:"new_status,omitempty"`
}

func (s *Server) QuickUpdatePrinter(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req quickUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := fleet.QuickUpdateParams{
		Technician:    req.Technician,
		ProblemCodes:  req.ProblemCodes,
		SolutionCodes: req.SolutionCodes,
	}
	if req.NewStatus != nil {
		status := fleet.Status(*req.NewStatus)
		params.NewStatus = &status
	}

	printer, record, err := s.fleet.QuickUpdate(r.Context(), id, params)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Quick update filed", "printer_id", id, "record_id", record.ID)
	writeJSON(w, http.StatusOK, markRepairedResponse{
		Printer: toPrinterResponse(printer),
		Record:  toMaintenanceResponse(record),
	})
}

type openMaintenanceRequest struct {
	IssueDescription string  `json:"issue_description"`
	Technician       *string `json:"technician,omitempty"`
}

func (s *Server) OpenPrinterMaintenance(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req openMaintenanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := s.fleet.OpenMaintenance(r.Context(), id, req.IssueDescription, req.Technician)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	logger.Info("Maintenance opened", "printer_id", id, "record_id", record.ID)
	writeJSON(w, http.StatusCreated, toMaintenanceResponse(record))
}

func (s *Server) ListPrinterMaintenance(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	records, err := s.db.Store().ListMaintenanceRecordsByPrinter(r.Context(), id)
	if err != nil {
		logger.Error("Failed to list printer maintenance", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeList(w, toMaintenanceResponses(records), int64(len(records)), int64(len(records)), 0)
}
