package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/testutil"
)

func TestServer_Maintenance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping maintenance tests in short mode")
	}

	h := newTestHarness(t)
	admin := testutil.NewTestUser().WithRole(rbac.RoleAdmin)
	technician := testutil.NewTestUser().WithRole(rbac.RoleTechnician)
	client := testutil.NewTestUser().WithRole(rbac.RoleClient)

	t.Run("get returns the record", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()
		rec := h.db.NewMaintenanceRecord(t, printer).WithDescription("Fuser error C6000").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Fuser error C6000", resp.Body["issue_description"])
		assert.Equal(t, "pending", resp.Body["status"])
	})

	t.Run("clients cannot read maintenance", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(client), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("create files a record without touching the printer", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("deployed").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance",
			Body: map[string]interface{}{
				"printer_id":        printer.ID,
				"issue_description": "Streaks on every page",
				"technician":        "M. Okafor",
			},
		})
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "pending", resp.Body["status"])
		assert.Equal(t, printer.ID.String(), resp.Body["printer_id"])
		assert.Nil(t, resp.Body["started_at"])

		current, err := h.db.Store().GetPrinter(context.Background(), printer.ID)
		require.NoError(t, err)
		assert.Equal(t, "deployed", current.Status)
	})

	t.Run("create accepts in_progress but never a terminal state", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance",
			Body: map[string]interface{}{
				"printer_id":        printer.ID,
				"issue_description": "Roller replacement underway",
				"status":            "in_progress",
			},
		})
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "in_progress", resp.Body["status"])
		assert.NotNil(t, resp.Body["started_at"])

		resp = testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance",
			Body: map[string]interface{}{
				"printer_id":        printer.ID,
				"issue_description": "Already fixed",
				"status":            "completed",
			},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("create requires a known printer", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance",
			Body: map[string]interface{}{
				"printer_id":        uuid.New(),
				"issue_description": "Ghost printer",
			},
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance",
			Body:   map[string]interface{}{"issue_description": "No printer given"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("advance walks pending to completed", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance/" + rec.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "in_progress"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "in_progress", resp.Body["status"])
		assert.NotNil(t, resp.Body["started_at"])

		resp = testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance/" + rec.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "completed"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "completed", resp.Body["status"])
		assert.NotNil(t, resp.Body["completed_at"])
	})

	t.Run("advance rejects skipping the lifecycle", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()
		rec := h.db.NewMaintenanceRecord(t, printer).WithStatus("completed").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance/" + rec.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "in_progress"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("advance rejects made-up statuses", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/maintenance/" + rec.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "paused"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("update edits notes and technician", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
			Body: map[string]interface{}{
				"issue_description": "Prints blank pages",
				"repair_notes":      "Replaced the drum unit",
				"technician":        "M. Okafor",
			},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Replaced the drum unit", resp.Body["repair_notes"])
		assert.Equal(t, "M. Okafor", resp.Body["technician"])
	})

	t.Run("update requires an issue description", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
			Body:   map[string]interface{}{"repair_notes": "no description"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("listing filters by printer", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		other := h.db.NewPrinter(t).Create()
		h.db.NewMaintenanceRecord(t, printer).Create()
		h.db.NewMaintenanceRecord(t, printer).Create()
		h.db.NewMaintenanceRecord(t, other).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/maintenance",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, resp.Body["data"], 2)
	})

	t.Run("only admins delete records", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		rec := h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/maintenance/" + rec.ID.String(),
		})
		assert.Equal(t, http.StatusNoContent, resp.Code)
	})
}
