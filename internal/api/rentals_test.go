package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/testutil"
)

func TestServer_Rentals(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rental tests in short mode")
	}

	h := newTestHarness(t)
	admin := testutil.NewTestUser().WithRole(rbac.RoleAdmin)

	createRental := func(t *testing.T) (uuid.UUID, uuid.UUID) {
		t.Helper()
		printer := h.db.NewPrinter(t).ForRent().Create()
		client := h.db.NewClient(t).Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals",
			Body: map[string]interface{}{
				"printer_id":   printer.ID,
				"client_id":    client.ID,
				"monthly_rate": 1200.50,
				"starts_on":    time.Now().Format(time.RFC3339),
			},
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		idStr, _ := resp.Body["id"].(string)
		id, err := uuid.Parse(idStr)
		require.NoError(t, err)
		return id, printer.ID
	}

	t.Run("create rental notifies admins", func(t *testing.T) {
		id, _ := createRental(t)

		calls := h.notifier.recorded()
		require.NotEmpty(t, calls)
		last := calls[len(calls)-1]
		assert.Equal(t, "rental", last.EntityType)
		assert.Equal(t, id, last.EntityID)
		require.Len(t, last.Groups, 1)
		assert.Equal(t, "rental_requested", last.Groups[0].Template)
	})

	t.Run("create rejects printers not offered for rent", func(t *testing.T) {
		printer := h.db.NewPrinter(t).Create() // not for rent
		client := h.db.NewClient(t).Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals",
			Body: map[string]interface{}{
				"printer_id":   printer.ID,
				"client_id":    client.ID,
				"monthly_rate": 900,
				"starts_on":    time.Now().Format(time.RFC3339),
			},
		})

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", errorCode(t, resp))
	})

	t.Run("activate flips rental and printer together", func(t *testing.T) {
		id, printerID := createRental(t)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/activate",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "active", resp.Body["status"])

		check := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers/" + printerID.String(),
		})
		assert.Equal(t, "rented", check.Body["status"])
	})

	t.Run("activate refuses when printer is not available", func(t *testing.T) {
		id, printerID := createRental(t)

		// Pull the printer into repair before activation.
		repair := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printerID.String() + "/status",
			Body:   map[string]interface{}{"status": "for_repair"},
		})
		require.Equal(t, http.StatusOK, repair.Code)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/activate",
		})

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", errorCode(t, resp))
	})

	t.Run("return puts the printer back in stock", func(t *testing.T) {
		id, printerID := createRental(t)

		activate := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/activate",
		})
		require.Equal(t, http.StatusOK, activate.Code)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/return",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "returned", resp.Body["status"])
		assert.NotNil(t, resp.Body["returned_at"])

		check := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/printers/" + printerID.String(),
		})
		assert.Equal(t, "available", check.Body["status"])
	})

	t.Run("return succeeds when the printer is already available", func(t *testing.T) {
		id, printerID := createRental(t)

		activate := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/activate",
		})
		require.Equal(t, http.StatusOK, activate.Code)

		// Someone put the unit back in stock by hand under the open
		// rental; closing the rental must still succeed.
		reset := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/printers/" + printerID.String() + "/status",
			Body:   map[string]interface{}{"status": "available"},
		})
		require.Equal(t, http.StatusOK, reset.Code)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/return",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "returned", resp.Body["status"])
	})

	t.Run("cancel only applies to pending rentals", func(t *testing.T) {
		id, _ := createRental(t)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/cancel",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "cancelled", resp.Body["status"])

		again := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/cancel",
		})
		require.Equal(t, http.StatusConflict, again.Code)
	})

	t.Run("delete refuses active rentals", func(t *testing.T) {
		id, _ := createRental(t)

		activate := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/" + id.String() + "/activate",
		})
		require.Equal(t, http.StatusOK, activate.Code)

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/rentals/" + id.String(),
		})

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", errorCode(t, resp))
	})
}
