package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/testutil"
)

func errorCode(t *testing.T, resp *testutil.Response) string {
	t.Helper()
	errBody, ok := resp.Body["error"].(map[string]interface{})
	require.True(t, ok, "response has no error body: %v", resp.Body)
	code, _ := errBody["code"].(string)
	return code
}

func TestServer_Printers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping printer tests in short mode")
	}

	h := newTestHarness(t)
	admin := testutil.NewTestUser().WithRole(rbac.RoleAdmin)
	technician := testutil.NewTestUser().WithRole(rbac.RoleTechnician)
	client := testutil.NewTestUser().WithRole(rbac.RoleClient)

	t.Run("create printer", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers",
			Body: map[string]interface{}{
				"make":   "Kyocera",
				"series": "ECOSYS",
				"model":  "P3145dn",
			},
		})

		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "available", resp.Body["status"])
		assert.Equal(t, "Available (System Unit)", resp.Body["display_status"])
		assert.Equal(t, "system", resp.Body["owned_by"])
	})

	t.Run("create printer requires make series model", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers",
			Body:   map[string]interface{}{"make": "Kyocera"},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("create printer denied for technician", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers",
			Body: map[string]interface{}{
				"make": "Brother", "series": "HL", "model": "L2350DW",
			},
		})

		require.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "PERMISSION_DENIED", errorCode(t, resp))
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(nil), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers",
		})

		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("client can read but not update", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()

		resp := testutil.MakeRequest(t, h.routerAs(client), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers/" + printer.ID.String(),
		})
		require.Equal(t, http.StatusOK, resp.Code)

		resp = testutil.MakeRequest(t, h.routerAs(client), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "maintenance"},
		})
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("list rejects unknown status filter", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method:      http.MethodGet,
			Path:        "/api/v1/printers",
			QueryParams: map[string]string{"status": "exploded"},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("assign printer to client", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		acme := h.db.NewClient(t).WithName("Acme Corp").Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/assign",
			Body:   map[string]interface{}{"client_id": acme.ID},
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "client", resp.Body["owned_by"])
		assert.Equal(t, "Acme Corp", resp.Body["assigned_to"])
		assert.Equal(t, "Available (Acme Corp)", resp.Body["display_status"])
	})

	t.Run("reclaim printer back to stock", func(t *testing.T) {
		acme := h.db.NewClient(t).WithName("Reclaim Co").Create()
		printer := h.db.NewPrinter(t).OwnedByClient(acme).Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/reclaim",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "system", resp.Body["owned_by"])
		assert.Equal(t, "Available (System Unit)", resp.Body["display_status"])
		assert.Nil(t, resp.Body["assigned_to"])
	})

	t.Run("status update to same value reports no changes", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("maintenance").Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "maintenance"},
		})

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", errorCode(t, resp))
		errBody := resp.Body["error"].(map[string]interface{})
		assert.Equal(t, "No changes to apply", errBody["message"])

		// Nothing was written.
		current, err := h.db.Store().GetPrinter(context.Background(), printer.ID)
		require.NoError(t, err)
		assert.Equal(t, printer.UpdatedAt, current.UpdatedAt)
	})

	t.Run("status update rejects passive statuses", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/status",
			Body:   map[string]interface{}{"status": "retired"},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("mark repaired restores printer and files a record", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/mark-repaired",
			Body: map[string]interface{}{
				"reason":   "Fuser unit worn out",
				"solution": "Replaced fuser unit",
			},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		printerBody, ok := resp.Body["printer"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "available", printerBody["status"])
		notes, _ := printerBody["notes"].(string)
		assert.Contains(t, notes, "Previously in For Repair status, marked as repaired on")

		recordBody, ok := resp.Body["record"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "completed", recordBody["status"])
		assert.Equal(t, "repair", recordBody["activity_type"])
	})

	t.Run("mark repaired requires reason and solution", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("for_repair").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/mark-repaired",
			Body:   map[string]interface{}{"reason": "Paper feed failure"},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("quick update expands check sheet codes", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("deployed").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/quick-update",
			Body: map[string]interface{}{
				"technician":     "R. Vega",
				"problem_codes":  []string{"paper_jam", "toner_leak"},
				"solution_codes": []string{"cleared_jam", "replaced_toner"},
			},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		recordBody, ok := resp.Body["record"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Paper jam; Toner leak", recordBody["issue_description"])
		assert.Equal(t, "Cleared paper jam; Replaced toner cartridge", recordBody["repair_notes"])
	})

	t.Run("quick update rejects unknown codes", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/quick-update",
			Body: map[string]interface{}{
				"technician":     "R. Vega",
				"problem_codes":  []string{"gremlins"},
				"solution_codes": []string{"cleared_jam"},
			},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("open maintenance flips printer to for_repair", func(t *testing.T) {
		printer := h.db.NewPrinter(t).WithStatus("deployed").Create()

		resp := testutil.MakeRequest(t, h.routerAs(technician), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printer.ID.String() + "/maintenance",
			Body:   map[string]interface{}{"issue_description": "Grinding noise from tray 2"},
		})

		require.Equal(t, http.StatusCreated, resp.Code)

		check := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers/" + printer.ID.String(),
		})
		require.Equal(t, http.StatusOK, check.Code)
		assert.Equal(t, "for_repair", check.Body["status"])
	})

	t.Run("delete refuses printers with history", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create()
		h.db.NewMaintenanceRecord(t, printer).Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/printers/" + printer.ID.String(),
		})

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", errorCode(t, resp))
	})
}
