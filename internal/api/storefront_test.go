package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/testutil"
)

func TestServer_Storefront(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping storefront tests in short mode")
	}

	h := newTestHarness(t)
	h.db.NewPrinter(t).ForRent().Create()
	h.db.NewPrinter(t).WithModel("Kyocera", "TASKalfa", "3554ci").ForRent().WithStatus("rented").Create()
	h.db.NewPrinter(t).WithNotes("internal workhorse, never listed").Create()

	t.Run("lists available rentals without a session", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(nil), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/storefront/printers",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		data := resp.Body["data"].([]interface{})
		require.Len(t, data, 1)
		row := data[0].(map[string]interface{})
		assert.Equal(t, "P3145dn", row["model"])
	})

	t.Run("public shape hides internal fields", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(nil), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/storefront/printers",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		row := resp.Body["data"].([]interface{})[0].(map[string]interface{})
		assert.NotContains(t, row, "owned_by")
		assert.NotContains(t, row, "notes")
		assert.NotContains(t, row, "status")
	})
}
