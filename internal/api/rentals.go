package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/notifications"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

// Rental lifecycle states. A rental only touches printer status through
// the fleet service, on activation and return.
const (
	rentalPending   = "pending"
	rentalActive    = "active"
	rentalReturned  = "returned"
	rentalCancelled = "cancelled"
)

type rentalResponse struct {
	ID          uuid.UUID  `json:"id"`
	PrinterID   uuid.UUID  `json:"printer_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Department  *string    `json:"department,omitempty"`
	Status      string     `json:"status"`
	MonthlyRate float64    `json:"monthly_rate"`
	StartsOn    time.Time  `json:"starts_on"`
	EndsOn      *time.Time `json:"ends_on,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toRentalResponse(rt *store.Rental) rentalResponse {
	return rentalResponse{
		ID:          rt.ID,
		PrinterID:   rt.PrinterID,
		ClientID:    rt.ClientID,
		Department:  rt.Department,
		Status:      rt.Status,
		MonthlyRate: rt.MonthlyRate,
		StartsOn:    rt.StartsOn,
		EndsOn:      rt.EndsOn,
		ReturnedAt:  rt.ReturnedAt,
		Notes:       rt.Notes,
		CreatedAt:   rt.CreatedAt,
		UpdatedAt:   rt.UpdatedAt,
	}
}

func (s *Server) ListRentals(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	rentals, err := s.db.Store().ListRentals(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list rentals", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	total, err := s.db.Store().CountRentals(r.Context())
	if err != nil {
		logger.Error("Failed to count rentals", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]rentalResponse, len(rentals))
	for i := range rentals {
		out[i] = toRentalResponse(&rentals[i])
	}
	writeList(w, out, total, limit, offset)
}

type rentalRequest struct {
	PrinterID   uuid.UUID  `json:"printer_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Department  *string    `json:"department,omitempty"`
	MonthlyRate float64    `json:"monthly_rate"`
	StartsOn    time.Time  `json:"starts_on"`
	EndsOn      *time.Time `json:"ends_on,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (s *Server) CreateRental(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())

	var req rentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var details []ErrorDetail
	if req.PrinterID == uuid.Nil {
		details = append(details, ErrorDetail{Field: "printer_id", Message: "printer is required"})
	}
	if req.ClientID == uuid.Nil {
		details = append(details, ErrorDetail{Field: "client_id", Message: "client is required"})
	}
	if req.MonthlyRate < 0 {
		details = append(details, ErrorDetail{Field: "monthly_rate", Message: "monthly rate cannot be negative"})
	}
	if req.StartsOn.IsZero() {
		details = append(details, ErrorDetail{Field: "starts_on", Message: "start date is required"})
	}
	if len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	printer, err := s.db.Store().GetPrinter(r.Context(), req.PrinterID)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}
	if !printer.IsForRent {
		Conflict("Printer is not offered for rent").Write(w, http.StatusConflict)
		return
	}
	if _, err := s.db.Store().GetClient(r.Context(), req.ClientID); err != nil {
		respondError(w, r, err, "Client")
		return
	}

	rental, err := s.db.Store().CreateRental(r.Context(), store.CreateRentalParams{
		PrinterID:   req.PrinterID,
		ClientID:    req.ClientID,
		Department:  req.Department,
		Status:      rentalPending,
		MonthlyRate: req.MonthlyRate,
		StartsOn:    req.StartsOn,
		EndsOn:      req.EndsOn,
		Notes:       req.Notes,
	})
	if err != nil {
		logger.Error("Failed to create rental", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	s.notifyRole(r.Context(), user, rbac.RoleAdmin, "rental", rental.ID,
		"A new rental request is waiting for review",
		"rental_requested", map[string]interface{}{
			"Printer":  fmt.Sprintf("%s %s", printer.Make, printer.Model),
			"StartsOn": rental.StartsOn.Format("2006-01-02"),
		})

	logger.Info("Rental created", "rental_id", rental.ID, "printer_id", req.PrinterID)
	writeJSON(w, http.StatusCreated, toRentalResponse(rental))
}

func (s *Server) GetRental(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	rental, err := s.db.Store().GetRental(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

type rentalUpdateRequest struct {
	Department  *string    `json:"department,omitempty"`
	MonthlyRate float64    `json:"monthly_rate"`
	StartsOn    time.Time  `json:"starts_on"`
	EndsOn      *time.Time `json:"ends_on,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (s *Server) UpdateRental(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req rentalUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MonthlyRate < 0 {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "monthly_rate", Message: "monthly rate cannot be negative"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	rental, err := s.db.Store().UpdateRental(r.Context(), store.UpdateRentalParams{
		ID:          id,
		Department:  req.Department,
		MonthlyRate: req.MonthlyRate,
		StartsOn:    req.StartsOn,
		EndsOn:      req.EndsOn,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (s *Server) ActivateRental(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	rental, err := s.db.Store().GetRental(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	if rental.Status != rentalPending {
		Conflict("Only pending rentals can be activated").Write(w, http.StatusConflict)
		return
	}

	printer, err := s.db.Store().GetPrinter(r.Context(), rental.PrinterID)
	if err != nil {
		respondError(w, r, err, "Printer")
		return
	}
	if fleet.Status(printer.Status) != fleet.StatusAvailable {
		Conflict("Printer is not available").
			WithContext(ErrorContext{"printer_status": printer.Status}).
			Write(w, http.StatusConflict)
		return
	}

	if _, err := s.fleet.UpdateStatus(r.Context(), rental.PrinterID, fleet.StatusRented); err != nil && !errors.Is(err, fleet.ErrNoChanges) {
		respondError(w, r, err, "Printer")
		return
	}

	rental, err = s.db.Store().UpdateRentalStatus(r.Context(), id, rentalActive, nil)
	if err != nil {
		logger.Error("Printer marked rented but rental activation failed",
			"rental_id", id, "printer_id", rental.PrinterID, "error", err)
		NewError(CodePartialFailure, "Printer was marked rented but the rental could not be activated").
			WithContext(ErrorContext{"completed": "printer status update", "failed": "rental activation"}).
			Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Rental activated", "rental_id", id)
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (s *Server) ReturnRental(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	rental, err := s.db.Store().GetRental(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	if rental.Status != rentalActive {
		Conflict("Only active rentals can be returned").Write(w, http.StatusConflict)
		return
	}

	now := time.Now().UTC()
	rental, err = s.db.Store().UpdateRentalStatus(r.Context(), id, rentalReturned, &now)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}

	// The printer may already be available (e.g. reclaimed under an open
	// rental); that is not a failure of the return.
	if _, err := s.fleet.UpdateStatus(r.Context(), rental.PrinterID, fleet.StatusAvailable); err != nil && !errors.Is(err, fleet.ErrNoChanges) {
		logger.Error("Rental returned but printer status update failed",
			"rental_id", id, "printer_id", rental.PrinterID, "error", err)
		NewError(CodePartialFailure, "Rental was returned but the printer could not be marked available").
			WithContext(ErrorContext{"completed": "rental return", "failed": "printer status update"}).
			Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Rental returned", "rental_id", id)
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (s *Server) CancelRental(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	rental, err := s.db.Store().GetRental(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	if rental.Status != rentalPending {
		Conflict("Only pending rentals can be cancelled").Write(w, http.StatusConflict)
		return
	}

	rental, err = s.db.Store().UpdateRentalStatus(r.Context(), id, rentalCancelled, nil)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}

	logger.Info("Rental cancelled", "rental_id", id)
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (s *Server) DeleteRental(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	rental, err := s.db.Store().GetRental(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	if rental.Status == rentalActive {
		Conflict("Active rentals cannot be deleted").Write(w, http.StatusConflict)
		return
	}

	if err := s.db.Store().DeleteRental(r.Context(), id); err != nil {
		respondError(w, r, err, "Rental")
		return
	}
	logger.Info("Rental deleted", "rental_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}

// notifyRole fans an in-app notification out to everyone with the given
// role. A non-empty template also queues an email per recipient.
// Failures are logged, never surfaced to the caller.
func (s *Server) notifyRole(ctx context.Context, user *auth.AuthenticatedUser, role rbac.Role, entityType string, entityID uuid.UUID, message, template string, templateData map[string]interface{}) {
	profiles, err := s.db.Store().ListProfilesByRole(ctx, string(role))
	if err != nil {
		middleware.GetLoggerFromContext(ctx).Error("Failed to resolve notification recipients", "role", role, "error", err)
		return
	}
	ids := make([]uuid.UUID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	var actorID uuid.UUID
	if user != nil {
		actorID = user.ID
	}
	if err := s.notifier.Notify(ctx, actorID, entityType, entityID, []notifications.NotifierGroup{
		{IDs: ids, Message: message, Template: template, TemplateData: templateData},
	}); err != nil {
		middleware.GetLoggerFromContext(ctx).Error("Failed to send notifications", "role", role, "error", err)
	}
}
