package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/store"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetPrinter(ctx context.Context, id uuid.UUID) (*store.Printer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Printer), args.Error(1)
}

func (m *mockStore) UpdatePrinterAssignment(ctx context.Context, arg store.UpdatePrinterAssignmentParams) (*store.Printer, error) {
	args := m.Called(ctx, arg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Printer), args.Error(1)
}

func (m *mockStore) UpdatePrinterStatus(ctx context.Context, id uuid.UUID, status string) (*store.Printer, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Printer), args.Error(1)
}

func (m *mockStore) UpdatePrinterStatusNotes(ctx context.Context, id uuid.UUID, status, notes string) (*store.Printer, error) {
	args := m.Called(ctx, id, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Printer), args.Error(1)
}

func (m *mockStore) GetClient(ctx context.Context, id uuid.UUID) (*store.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Client), args.Error(1)
}

func (m *mockStore) GetDepartment(ctx context.Context, id uuid.UUID) (*store.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Department), args.Error(1)
}

func (m *mockStore) CreateMaintenanceRecord(ctx context.Context, arg store.CreateMaintenanceRecordParams) (*store.MaintenanceRecord, error) {
	args := m.Called(ctx, arg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.MaintenanceRecord), args.Error(1)
}

func (m *mockStore) GetMaintenanceRecord(ctx context.Context, id uuid.UUID) (*store.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.MaintenanceRecord), args.Error(1)
}

func (m *mockStore) UpdateMaintenanceStatus(ctx context.Context, arg store.UpdateMaintenanceStatusParams) (*store.MaintenanceRecord, error) {
	args := m.Called(ctx, arg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.MaintenanceRecord), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	ms.Test(t)
	svc := NewService(ms)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	}
	return svc, ms
}

func strPtr(s string) *string { return &s }

func printerWith(status string) *store.Printer {
	return &store.Printer{
		ID:      uuid.New(),
		Make:    "Kyocera",
		Series:  "ECOSYS",
		Model:   "P3155dn",
		Status:  status,
		OwnedBy: string(OwnedBySystem),
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Run("moves printer to new status", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("available")
		updated := printerWith("deployed")
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("UpdatePrinterStatus", mock.Anything, p.ID, "deployed").Return(updated, nil)

		got, err := svc.UpdateStatus(context.Background(), p.ID, StatusDeployed)
		require.NoError(t, err)
		assert.Equal(t, "deployed", got.Status)
		ms.AssertExpectations(t)
	})

	t.Run("same status issues no write", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("deployed")
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)

		got, err := svc.UpdateStatus(context.Background(), p.ID, StatusDeployed)
		require.ErrorIs(t, err, ErrNoChanges)
		assert.Equal(t, p, got)
		ms.AssertNotCalled(t, "UpdatePrinterStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects non-selectable status", func(t *testing.T) {
		svc, ms := newTestService(t)
		_, err := svc.UpdateStatus(context.Background(), uuid.New(), Status("retired"))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Field)
		ms.AssertNotCalled(t, "GetPrinter", mock.Anything, mock.Anything)
	})
}

func TestAssign(t *testing.T) {
	t.Run("assigns printer to a client", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("available")
		client := &store.Client{ID: uuid.New(), Name: "Harbor Freight Logistics"}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("GetClient", mock.Anything, client.ID).Return(client, nil)
		ms.On("UpdatePrinterAssignment", mock.Anything, store.UpdatePrinterAssignmentParams{
			ID:         p.ID,
			OwnedBy:    "client",
			AssignedTo: &client.Name,
			ClientID:   &client.ID,
		}).Return(p, nil)

		_, err := svc.Assign(context.Background(), p.ID, AssignParams{ClientID: client.ID})
		require.NoError(t, err)
		ms.AssertExpectations(t)
	})

	t.Run("requires a client", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Assign(context.Background(), uuid.New(), AssignParams{})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "client_id", ve.Field)
	})

	t.Run("rejects department of another client", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("available")
		client := &store.Client{ID: uuid.New(), Name: "Acme"}
		deptID := uuid.New()
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("GetClient", mock.Anything, client.ID).Return(client, nil)
		ms.On("GetDepartment", mock.Anything, deptID).Return(&store.Department{
			ID: deptID, ClientID: uuid.New(), Name: "Accounting",
		}, nil)

		_, err := svc.Assign(context.Background(), p.ID, AssignParams{
			ClientID:     client.ID,
			DepartmentID: &deptID,
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "department_id", ve.Field)
		ms.AssertNotCalled(t, "UpdatePrinterAssignment", mock.Anything, mock.Anything)
	})
}

func TestTransfer(t *testing.T) {
	t.Run("moving clients drops the old department", func(t *testing.T) {
		svc, ms := newTestService(t)
		oldClientID := uuid.New()
		p := printerWith("deployed")
		p.OwnedBy = "client"
		p.ClientID = &oldClientID
		p.Department = strPtr("Front Office")
		newClient := &store.Client{ID: uuid.New(), Name: "Northwind Traders"}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("GetClient", mock.Anything, newClient.ID).Return(newClient, nil)
		ms.On("UpdatePrinterAssignment", mock.Anything, store.UpdatePrinterAssignmentParams{
			ID:         p.ID,
			OwnedBy:    "client",
			AssignedTo: &newClient.Name,
			ClientID:   &newClient.ID,
			Department: nil,
		}).Return(p, nil)

		_, err := svc.Transfer(context.Background(), p.ID, AssignParams{ClientID: newClient.ID})
		require.NoError(t, err)
		ms.AssertExpectations(t)
	})

	t.Run("transfer to current client without department is a no-op", func(t *testing.T) {
		svc, ms := newTestService(t)
		clientID := uuid.New()
		p := printerWith("deployed")
		p.ClientID = &clientID
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)

		_, err := svc.Transfer(context.Background(), p.ID, AssignParams{ClientID: clientID})
		require.ErrorIs(t, err, ErrNoChanges)
		ms.AssertNotCalled(t, "UpdatePrinterAssignment", mock.Anything, mock.Anything)
	})
}

func TestReclaim(t *testing.T) {
	svc, ms := newTestService(t)
	p := printerWith("available")
	p.OwnedBy = "client"
	ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
	ms.On("UpdatePrinterAssignment", mock.Anything, store.UpdatePrinterAssignmentParams{
		ID:      p.ID,
		OwnedBy: "system",
	}).Return(p, nil)

	_, err := svc.Reclaim(context.Background(), p.ID)
	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestMarkRepaired(t *testing.T) {
	t.Run("files record then restores printer", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("for_repair")
		p.Notes = strPtr("Front tray sticks")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.MatchedBy(func(arg store.CreateMaintenanceRecordParams) bool {
			return arg.PrinterID == p.ID &&
				arg.Status == "completed" &&
				arg.ActivityType == "repair" &&
				arg.IssueDescription == "Paper feed failure" &&
				arg.CompletedAt != nil
		})).Return(rec, nil)
		ms.On("UpdatePrinterStatusNotes", mock.Anything, p.ID, "available",
			"Front tray sticks\nPreviously in For Repair status, marked as repaired on 2025-03-14").
			Return(printerWith("available"), nil)

		updated, got, err := svc.MarkRepaired(context.Background(), p.ID, MarkRepairedParams{
			Reason:   "Paper feed failure",
			Solution: "Replaced pickup rollers",
		})
		require.NoError(t, err)
		assert.Equal(t, rec, got)
		assert.Equal(t, "available", updated.Status)
		ms.AssertExpectations(t)
	})

	t.Run("record insert failure leaves printer untouched", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("for_repair")
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.Anything).
			Return(nil, errors.New("insert failed"))

		_, _, err := svc.MarkRepaired(context.Background(), p.ID, MarkRepairedParams{
			Reason:   "Fuser error",
			Solution: "Replaced fuser",
		})
		require.Error(t, err)
		var pf *PartialFailureError
		assert.False(t, errors.As(err, &pf))
		ms.AssertNotCalled(t, "UpdatePrinterStatusNotes",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status write failure surfaces as partial failure", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("maintenance")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.Anything).Return(rec, nil)
		ms.On("UpdatePrinterStatusNotes", mock.Anything, p.ID, "available", mock.Anything).
			Return(nil, errors.New("connection reset"))

		_, got, err := svc.MarkRepaired(context.Background(), p.ID, MarkRepairedParams{
			Reason:   "Fuser error",
			Solution: "Replaced fuser",
		})
		var pf *PartialFailureError
		require.ErrorAs(t, err, &pf)
		assert.Equal(t, "maintenance record", pf.Completed)
		assert.Equal(t, "printer status update", pf.Failed)
		assert.Equal(t, rec, got)
	})

	t.Run("requires reason and solution", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, err := svc.MarkRepaired(context.Background(), uuid.New(), MarkRepairedParams{Solution: "x"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "reason", ve.Field)

		_, _, err = svc.MarkRepaired(context.Background(), uuid.New(), MarkRepairedParams{Reason: "x"})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "solution", ve.Field)
	})
}

func TestQuickUpdate(t *testing.T) {
	t.Run("expands codes into the record", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("for_repair")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.MatchedBy(func(arg store.CreateMaintenanceRecordParams) bool {
			return arg.IssueDescription == "Paper jam; Toner leak" &&
				arg.RepairNotes != nil &&
				*arg.RepairNotes == "Cleared paper jam; Replaced toner cartridge"
		})).Return(rec, nil)
		newStatus := StatusAvailable
		ms.On("UpdatePrinterStatus", mock.Anything, p.ID, "available").
			Return(printerWith("available"), nil)

		updated, got, err := svc.QuickUpdate(context.Background(), p.ID, QuickUpdateParams{
			Technician:    "R. Alvarez",
			ProblemCodes:  []string{"paper_jam", "toner_leak"},
			SolutionCodes: []string{"cleared_jam", "replaced_toner"},
			NewStatus:     &newStatus,
		})
		require.NoError(t, err)
		assert.Equal(t, rec, got)
		assert.Equal(t, "available", updated.Status)
	})

	t.Run("matching status rides along silently", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("available")
		rec := &store.MaintenanceRecord{ID: uuid.New()}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.Anything).Return(rec, nil)
		newStatus := StatusAvailable

		_, _, err := svc.QuickUpdate(context.Background(), p.ID, QuickUpdateParams{
			Technician:    "R. Alvarez",
			ProblemCodes:  []string{"offline"},
			SolutionCodes: []string{"power_cycle"},
			NewStatus:     &newStatus,
		})
		require.NoError(t, err)
		ms.AssertNotCalled(t, "UpdatePrinterStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown code", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, err := svc.QuickUpdate(context.Background(), uuid.New(), QuickUpdateParams{
			Technician:    "R. Alvarez",
			ProblemCodes:  []string{"gremlins"},
			SolutionCodes: []string{"power_cycle"},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "problem_codes", ve.Field)
	})

	t.Run("requires technician and codes", func(t *testing.T) {
		svc, _ := newTestService(t)
		var ve *ValidationError

		_, _, err := svc.QuickUpdate(context.Background(), uuid.New(), QuickUpdateParams{
			ProblemCodes: []string{"paper_jam"}, SolutionCodes: []string{"cleared_jam"},
		})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "technician", ve.Field)

		_, _, err = svc.QuickUpdate(context.Background(), uuid.New(), QuickUpdateParams{
			Technician: "R. Alvarez", SolutionCodes: []string{"cleared_jam"},
		})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "problem_codes", ve.Field)

		_, _, err = svc.QuickUpdate(context.Background(), uuid.New(), QuickUpdateParams{
			Technician: "R. Alvarez", ProblemCodes: []string{"paper_jam"},
		})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "solution_codes", ve.Field)
	})
}

func TestOpenMaintenance(t *testing.T) {
	t.Run("flips an available printer to for_repair", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("deployed")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID, Status: "pending"}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.Anything).Return(rec, nil)
		ms.On("UpdatePrinterStatus", mock.Anything, p.ID, "for_repair").
			Return(printerWith("for_repair"), nil)

		got, err := svc.OpenMaintenance(context.Background(), p.ID, "Grinding noise from duplexer", nil)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
		ms.AssertExpectations(t)
	})

	t.Run("leaves a printer already in a service state alone", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("maintenance")
		rec := &store.MaintenanceRecord{ID: uuid.New()}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.Anything).Return(rec, nil)

		_, err := svc.OpenMaintenance(context.Background(), p.ID, "Second jam this week", nil)
		require.NoError(t, err)
		ms.AssertNotCalled(t, "UpdatePrinterStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateMaintenance(t *testing.T) {
	t.Run("defaults to pending and never touches the printer", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("deployed")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID, Status: "pending"}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.MatchedBy(func(arg store.CreateMaintenanceRecordParams) bool {
			return arg.Status == "pending" && arg.StartedAt == nil
		})).Return(rec, nil)

		got, err := svc.CreateMaintenance(context.Background(), CreateMaintenanceParams{
			PrinterID:        p.ID,
			IssueDescription: "Fuser error 6000",
		})
		require.NoError(t, err)
		assert.Equal(t, rec, got)
		ms.AssertNotCalled(t, "UpdatePrinterStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("in_progress stamps started_at", func(t *testing.T) {
		svc, ms := newTestService(t)
		p := printerWith("for_repair")
		rec := &store.MaintenanceRecord{ID: uuid.New(), PrinterID: p.ID, Status: "in_progress"}
		ms.On("GetPrinter", mock.Anything, p.ID).Return(p, nil)
		ms.On("CreateMaintenanceRecord", mock.Anything, mock.MatchedBy(func(arg store.CreateMaintenanceRecordParams) bool {
			return arg.Status == "in_progress" && arg.StartedAt != nil
		})).Return(rec, nil)

		_, err := svc.CreateMaintenance(context.Background(), CreateMaintenanceParams{
			PrinterID:        p.ID,
			IssueDescription: "Roller replacement underway",
			Status:           MaintenanceInProgress,
		})
		require.NoError(t, err)
		ms.AssertExpectations(t)
	})

	t.Run("rejects terminal and unknown states", func(t *testing.T) {
		for _, target := range []MaintenanceStatus{MaintenanceCompleted, MaintenanceUnrepairable, MaintenanceDecommissioned, "scrapped"} {
			svc, ms := newTestService(t)
			_, err := svc.CreateMaintenance(context.Background(), CreateMaintenanceParams{
				PrinterID:        uuid.New(),
				IssueDescription: "Cracked paper tray",
				Status:           target,
			})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, target)
			assert.Equal(t, "status", ve.Field)
			ms.AssertNotCalled(t, "CreateMaintenanceRecord", mock.Anything, mock.Anything)
		}
	})
}

func TestAdvanceMaintenance(t *testing.T) {
	t.Run("pending to in_progress stamps started_at", func(t *testing.T) {
		svc, ms := newTestService(t)
		rec := &store.MaintenanceRecord{ID: uuid.New(), Status: "pending"}
		ms.On("GetMaintenanceRecord", mock.Anything, rec.ID).Return(rec, nil)
		ms.On("UpdateMaintenanceStatus", mock.Anything, mock.MatchedBy(func(arg store.UpdateMaintenanceStatusParams) bool {
			return arg.Status == "in_progress" && arg.StartedAt != nil && arg.CompletedAt == nil
		})).Return(rec, nil)

		_, err := svc.AdvanceMaintenance(context.Background(), rec.ID, MaintenanceInProgress)
		require.NoError(t, err)
		ms.AssertExpectations(t)
	})

	t.Run("terminal transitions stamp completed_at", func(t *testing.T) {
		for _, target := range []MaintenanceStatus{MaintenanceCompleted, MaintenanceUnrepairable, MaintenanceDecommissioned} {
			svc, ms := newTestService(t)
			rec := &store.MaintenanceRecord{ID: uuid.New(), Status: "in_progress"}
			ms.On("GetMaintenanceRecord", mock.Anything, rec.ID).Return(rec, nil)
			ms.On("UpdateMaintenanceStatus", mock.Anything, mock.MatchedBy(func(arg store.UpdateMaintenanceStatusParams) bool {
				return arg.Status == string(target) && arg.CompletedAt != nil
			})).Return(rec, nil)

			_, err := svc.AdvanceMaintenance(context.Background(), rec.ID, target)
			require.NoError(t, err, target)
		}
	})

	t.Run("terminal records never reopen", func(t *testing.T) {
		svc, ms := newTestService(t)
		rec := &store.MaintenanceRecord{ID: uuid.New(), Status: "completed"}
		ms.On("GetMaintenanceRecord", mock.Anything, rec.ID).Return(rec, nil)

		_, err := svc.AdvanceMaintenance(context.Background(), rec.ID, MaintenanceInProgress)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		ms.AssertNotCalled(t, "UpdateMaintenanceStatus", mock.Anything, mock.Anything)
	})
}
