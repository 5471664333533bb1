package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/store"
)

// Store is the persistence surface the fleet service needs. *store.Store
// satisfies it; tests substitute a mock.
type Store interface {
	GetPrinter(ctx context.Context, id uuid.UUID) (*store.Printer, error)
	UpdatePrinterAssignment(ctx context.Context, arg store.UpdatePrinterAssignmentParams) (*store.Printer, error)
	UpdatePrinterStatus(ctx context.Context, id uuid.UUID, status string) (*store.Printer, error)
	UpdatePrinterStatusNotes(ctx context.Context, id uuid.UUID, status, notes string) (*store.Printer, error)
	GetClient(ctx context.Context, id uuid.UUID) (*store.Client, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*store.Department, error)
	CreateMaintenanceRecord(ctx context.Context, arg store.CreateMaintenanceRecordParams) (*store.MaintenanceRecord, error)
	GetMaintenanceRecord(ctx context.Context, id uuid.UUID) (*store.MaintenanceRecord, error)
	UpdateMaintenanceStatus(ctx context.Context, arg store.UpdateMaintenanceStatusParams) (*store.MaintenanceRecord, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// AssignParams targets a printer at a client, optionally down to a
// department. A department must belong to the selected client.
type AssignParams struct {
	ClientID     uuid.UUID
	DepartmentID *uuid.UUID
}

// Assign hands a system-owned printer to a client. Status is untouched;
// deployment and rental flows flip it separately.
func (s *Service) Assign(ctx context.Context, printerID uuid.UUID, arg AssignParams) (*store.Printer, error) {
	if arg.ClientID == uuid.Nil {
		return nil, invalid("client_id", "a client must be selected")
	}
	if _, err := s.store.GetPrinter(ctx, printerID); err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, arg.ClientID)
	if err != nil {
		return nil, err
	}
	department, err := s.resolveDepartment(ctx, arg.ClientID, arg.DepartmentID)
	if err != nil {
		return nil, err
	}
	return s.store.UpdatePrinterAssignment(ctx, store.UpdatePrinterAssignmentParams{
		ID:         printerID,
		OwnedBy:    string(OwnedByClient),
		AssignedTo: &client.Name,
		ClientID:   &client.ID,
		Department: department,
	})
}

// Transfer moves a printer between clients. Any department carried from
// the previous client is dropped; only a department of the new client
// may be set in the same operation.
func (s *Service) Transfer(ctx context.Context, printerID uuid.UUID, arg AssignParams) (*store.Printer, error) {
	if arg.ClientID == uuid.Nil {
		return nil, invalid("client_id", "a client must be selected")
	}
	printer, err := s.store.GetPrinter(ctx, printerID)
	if err != nil {
		return nil, err
	}
	if printer.ClientID != nil && *printer.ClientID == arg.ClientID && arg.DepartmentID == nil {
		return nil, ErrNoChanges
	}
	client, err := s.store.GetClient(ctx, arg.ClientID)
	if err != nil {
		return nil, err
	}
	department, err := s.resolveDepartment(ctx, arg.ClientID, arg.DepartmentID)
	if err != nil {
		return nil, err
	}
	return s.store.UpdatePrinterAssignment(ctx, store.UpdatePrinterAssignmentParams{
		ID:         printerID,
		OwnedBy:    string(OwnedByClient),
		AssignedTo: &client.Name,
		ClientID:   &client.ID,
		Department: department,
	})
}

// Reclaim returns a printer to the system pool, clearing client,
// department and assignee.
func (s *Service) Reclaim(ctx context.Context, printerID uuid.UUID) (*store.Printer, error) {
	if _, err := s.store.GetPrinter(ctx, printerID); err != nil {
		return nil, err
	}
	return s.store.UpdatePrinterAssignment(ctx, store.UpdatePrinterAssignmentParams{
		ID:      printerID,
		OwnedBy: string(OwnedBySystem),
	})
}

// resolveDepartment validates an optional department against the client
// it must belong to. A department from any other client is rejected so a
// stale selection can never survive a client change.
func (s *Service) resolveDepartment(ctx context.Context, clientID uuid.UUID, departmentID *uuid.UUID) (*string, error) {
	if departmentID == nil {
		return nil, nil
	}
	dept, err := s.store.GetDepartment(ctx, *departmentID)
	if err != nil {
		return nil, err
	}
	if dept.ClientID != clientID {
		return nil, invalid("department_id", "department does not belong to the selected client")
	}
	return &dept.Name, nil
}

// UpdateStatus moves a printer to a new lifecycle state. When the
// printer is already in that state it returns ErrNoChanges without
// issuing a write.
func (s *Service) UpdateStatus(ctx context.Context, printerID uuid.UUID, newStatus Status) (*store.Printer, error) {
	if !newStatus.Selectable() {
		return nil, invalid("status", fmt.Sprintf("%q is not a selectable status", newStatus))
	}
	printer, err := s.store.GetPrinter(ctx, printerID)
	if err != nil {
		return nil, err
	}
	if Status(printer.Status) == newStatus {
		return printer, ErrNoChanges
	}
	return s.store.UpdatePrinterStatus(ctx, printerID, string(newStatus))
}

type MarkRepairedParams struct {
	Reason     string
	Solution   string
	Technician *string
}

// MarkRepaired closes out a repair in two writes: a completed
// maintenance record first, then the printer back to available with a
// provenance note appended. When the second write fails the record is
// kept and a PartialFailureError tells the caller which half landed.
func (s *Service) MarkRepaired(ctx context.Context, printerID uuid.UUID, arg MarkRepairedParams) (*store.Printer, *store.MaintenanceRecord, error) {
	if strings.TrimSpace(arg.Reason) == "" {
		return nil, nil, invalid("reason", "a reason is required")
	}
	if strings.TrimSpace(arg.Solution) == "" {
		return nil, nil, invalid("solution", "a solution is required")
	}
	printer, err := s.store.GetPrinter(ctx, printerID)
	if err != nil {
		return nil, nil, err
	}
	prior := Status(printer.Status)
	if prior != StatusMaintenance && prior != StatusForRepair {
		logging.Warn("marking printer repaired from unexpected status",
			"printer_id", printerID, "status", printer.Status)
	}

	now := s.now()
	record, err := s.store.CreateMaintenanceRecord(ctx, store.CreateMaintenanceRecordParams{
		PrinterID:        printerID,
		IssueDescription: arg.Reason,
		RepairNotes:      &arg.Solution,
		Status:           string(MaintenanceCompleted),
		ActivityType:     ActivityRepair,
		Technician:       arg.Technician,
		ReportedAt:       now,
		CompletedAt:      &now,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("record repair: %w", err)
	}

	note := fmt.Sprintf("Previously in %s status, marked as repaired on %s",
		prior.Label(), now.Format("2006-01-02"))
	notes := note
	if printer.Notes != nil && *printer.Notes != "" {
		notes = *printer.Notes + "\n" + note
	}
	updated, err := s.store.UpdatePrinterStatusNotes(ctx, printerID, string(StatusAvailable), notes)
	if err != nil {
		return printer, record, &PartialFailureError{
			Completed: "maintenance record",
			Failed:    "printer status update",
			Err:       err,
		}
	}
	return updated, record, nil
}

type ServiceReportParams struct {
	Summary    string
	Technician *string
	Remarks    *string
}

// ServiceReport files a routine service visit against a printer without
// touching its status.
func (s *Service) ServiceReport(ctx context.Context, printerID uuid.UUID, arg ServiceReportParams) (*store.MaintenanceRecord, error) {
	if strings.TrimSpace(arg.Summary) == "" {
		return nil, invalid("summary", "a summary is required")
	}
	if _, err := s.store.GetPrinter(ctx, printerID); err != nil {
		return nil, err
	}
	now := s.now()
	return s.store.CreateMaintenanceRecord(ctx, store.CreateMaintenanceRecordParams{
		PrinterID:        printerID,
		IssueDescription: arg.Summary,
		Status:           string(MaintenanceCompleted),
		ActivityType:     ActivityReport,
		Technician:       arg.Technician,
		ReportedAt:       now,
		CompletedAt:      &now,
		Remarks:          arg.Remarks,
	})
}

type QuickUpdateParams struct {
	Technician    string
	ProblemCodes  []string
	SolutionCodes []string
	NewStatus     *Status
}

// QuickUpdate files a check-sheet repair from the field. Codes expand to
// their labels in the record text. An optional status change rides along
// and is skipped silently when it matches the current state.
func (s *Service) QuickUpdate(ctx context.Context, printerID uuid.UUID, arg QuickUpdateParams) (*store.Printer, *store.MaintenanceRecord, error) {
	if strings.TrimSpace(arg.Technician) == "" {
		return nil, nil, invalid("technician", "a technician is required")
	}
	if len(arg.ProblemCodes) == 0 {
		return nil, nil, invalid("problem_codes", "at least one problem must be selected")
	}
	if len(arg.SolutionCodes) == 0 {
		return nil, nil, invalid("solution_codes", "at least one solution must be selected")
	}
	problems, err := expandCodes(arg.ProblemCodes, problemCodeLabels, "problem_codes")
	if err != nil {
		return nil, nil, err
	}
	solutions, err := expandCodes(arg.SolutionCodes, solutionCodeLabels, "solution_codes")
	if err != nil {
		return nil, nil, err
	}
	if arg.NewStatus != nil && !arg.NewStatus.Selectable() {
		return nil, nil, invalid("new_status", fmt.Sprintf("%q is not a selectable status", *arg.NewStatus))
	}
	printer, err := s.store.GetPrinter(ctx, printerID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	repairNotes := strings.Join(solutions, "; ")
	record, err := s.store.CreateMaintenanceRecord(ctx, store.CreateMaintenanceRecordParams{
		PrinterID:        printerID,
		IssueDescription: strings.Join(problems, "; "),
		RepairNotes:      &repairNotes,
		Status:           string(MaintenanceCompleted),
		ActivityType:     ActivityRepair,
		Technician:       &arg.Technician,
		ReportedAt:       now,
		CompletedAt:      &now,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("record quick update: %w", err)
	}

	if arg.NewStatus == nil || Status(printer.Status) == *arg.NewStatus {
		return printer, record, nil
	}
	updated, err := s.store.UpdatePrinterStatus(ctx, printerID, string(*arg.NewStatus))
	if err != nil {
		return printer, record, &PartialFailureError{
			Completed: "maintenance record",
			Failed:    "printer status update",
			Err:       err,
		}
	}
	return updated, record, nil
}

type CreateMaintenanceParams struct {
	PrinterID        uuid.UUID
	IssueDescription string
	Status           MaintenanceStatus
	RepairNotes      *string
	Technician       *string
	Remarks          *string
}

// CreateMaintenance files a record directly in a chosen open state and
// leaves the printer alone. Terminal states only come out of the
// closing flows; an omitted status means pending.
func (s *Service) CreateMaintenance(ctx context.Context, arg CreateMaintenanceParams) (*store.MaintenanceRecord, error) {
	if strings.TrimSpace(arg.IssueDescription) == "" {
		return nil, invalid("issue_description", "an issue description is required")
	}
	status := arg.Status
	if status == "" {
		status = MaintenancePending
	}
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("%q is not a maintenance status", status))
	}
	if status.Terminal() {
		return nil, invalid("status", fmt.Sprintf("a record cannot be created already %s", status))
	}
	if _, err := s.store.GetPrinter(ctx, arg.PrinterID); err != nil {
		return nil, err
	}
	now := s.now()
	params := store.CreateMaintenanceRecordParams{
		PrinterID:        arg.PrinterID,
		IssueDescription: arg.IssueDescription,
		RepairNotes:      arg.RepairNotes,
		Status:           string(status),
		ActivityType:     ActivityRepair,
		Technician:       arg.Technician,
		ReportedAt:       now,
		Remarks:          arg.Remarks,
	}
	if status == MaintenanceInProgress {
		params.StartedAt = &now
	}
	return s.store.CreateMaintenanceRecord(ctx, params)
}

// OpenMaintenance files a new issue against a printer and flips it to
// for_repair when it is not already in a service state.
func (s *Service) OpenMaintenance(ctx context.Context, printerID uuid.UUID, issue string, technician *string) (*store.MaintenanceRecord, error) {
	if strings.TrimSpace(issue) == "" {
		return nil, invalid("issue_description", "an issue description is required")
	}
	printer, err := s.store.GetPrinter(ctx, printerID)
	if err != nil {
		return nil, err
	}
	record, err := s.store.CreateMaintenanceRecord(ctx, store.CreateMaintenanceRecordParams{
		PrinterID:        printerID,
		IssueDescription: issue,
		Status:           string(MaintenancePending),
		ActivityType:     ActivityRepair,
		Technician:       technician,
		ReportedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	current := Status(printer.Status)
	if current != StatusMaintenance && current != StatusForRepair {
		if _, err := s.store.UpdatePrinterStatus(ctx, printerID, string(StatusForRepair)); err != nil {
			return record, &PartialFailureError{
				Completed: "maintenance record",
				Failed:    "printer status update",
				Err:       err,
			}
		}
	}
	return record, nil
}

// AdvanceMaintenance moves a maintenance record through its lifecycle.
// Terminal records are closed for good.
func (s *Service) AdvanceMaintenance(ctx context.Context, recordID uuid.UUID, to MaintenanceStatus) (*store.MaintenanceRecord, error) {
	if !to.Valid() {
		return nil, invalid("status", fmt.Sprintf("%q is not a maintenance status", to))
	}
	record, err := s.store.GetMaintenanceRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	from := MaintenanceStatus(record.Status)
	if !from.CanTransition(to) {
		return nil, invalid("status", fmt.Sprintf("cannot move a %s record to %s", from, to))
	}
	now := s.now()
	params := store.UpdateMaintenanceStatusParams{ID: recordID, Status: string(to)}
	if to == MaintenanceInProgress {
		params.StartedAt = &now
	}
	if to.Terminal() {
		params.CompletedAt = &now
	}
	return s.store.UpdateMaintenanceStatus(ctx, params)
}

func expandCodes(codes []string, labels map[string]string, field string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		label, ok := labels[code]
		if !ok {
			return nil, invalid(field, fmt.Sprintf("unknown code %q", code))
		}
		out = append(out, label)
	}
	return out, nil
}
