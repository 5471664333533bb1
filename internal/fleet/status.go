// Package fleet owns the printer status/ownership state machine and the
// maintenance record lifecycle. Handlers never write printer status or
// assignment fields directly; every mutation goes through the Service so
// the transition rules live in one place.
package fleet

import (
	"github.com/printdesk/pd-backend/internal/store"
)

// Status is a printer's lifecycle state.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusDeployed    Status = "deployed"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
	StatusForRepair   Status = "for_repair"

	// Administrative states carried by imported data. Transitions never
	// produce them.
	StatusUnknown Status = "unknown"
	StatusRetired Status = "retired"
)

// selectableStatuses are the states a manual status update may target.
var selectableStatuses = []Status{
	StatusAvailable, StatusDeployed, StatusRented, StatusMaintenance, StatusForRepair,
}

func (s Status) Selectable() bool {
	for _, v := range selectableStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns the human form shown in lists and reports.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusDeployed:
		return "Deployed"
	case StatusRented:
		return "Rented"
	case StatusMaintenance:
		return "Maintenance"
	case StatusForRepair:
		return "For Repair"
	case StatusRetired:
		return "Retired"
	default:
		return "Unknown"
	}
}

// Ownership says whether a printer is a company asset or a client's unit.
type Ownership string

const (
	OwnedBySystem Ownership = "system"
	OwnedByClient Ownership = "client"
)

// DisplayStatus derives the contextual status label. Availability is
// qualified by the current assignee; the qualifier is recomputed on every
// render and never stored.
func DisplayStatus(p *store.Printer) string {
	if Status(p.Status) != StatusAvailable {
		return Status(p.Status).Label()
	}
	if Ownership(p.OwnedBy) == OwnedByClient && p.AssignedTo != nil && *p.AssignedTo != "" {
		return "Available (" + *p.AssignedTo + ")"
	}
	return "Available (System Unit)"
}

// MaintenanceStatus is a maintenance record's lifecycle state.
type MaintenanceStatus string

const (
	MaintenancePending        MaintenanceStatus = "pending"
	MaintenanceInProgress     MaintenanceStatus = "in_progress"
	MaintenanceCompleted      MaintenanceStatus = "completed"
	MaintenanceUnrepairable   MaintenanceStatus = "unrepairable"
	MaintenanceDecommissioned MaintenanceStatus = "decommissioned"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted,
		MaintenanceUnrepairable, MaintenanceDecommissioned:
		return true
	}
	return false
}

func (s MaintenanceStatus) Terminal() bool {
	switch s {
	case MaintenanceCompleted, MaintenanceUnrepairable, MaintenanceDecommissioned:
		return true
	}
	return false
}

// CanTransition reports whether a maintenance record may move between the
// two states. Terminal states are never reopened; pending may jump
// straight to a terminal state (work recorded after the fact).
func (s MaintenanceStatus) CanTransition(to MaintenanceStatus) bool {
	if !s.Valid() || !to.Valid() || s == to {
		return false
	}
	if s.Terminal() {
		return false
	}
	switch s {
	case MaintenancePending:
		return to == MaintenanceInProgress || to.Terminal()
	case MaintenanceInProgress:
		return to.Terminal()
	}
	return false
}

// Activity types for maintenance records.
const (
	ActivityReport = "report"
	ActivityRepair = "repair"
)
