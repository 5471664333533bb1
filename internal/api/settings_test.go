package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/testutil"
)

func TestServer_Settings(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping settings tests in short mode")
	}

	h := newTestHarness(t)
	admin := testutil.NewTestUser().WithRole(rbac.RoleAdmin)
	tech := testutil.NewTestUser().WithRole(rbac.RoleTechnician)

	t.Run("update upserts and broadcasts", func(t *testing.T) {
		before := h.settings.broadcasts

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/settings/rental.default_monthly_rate",
			Body:   map[string]interface{}{"value": "75.00"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "rental.default_monthly_rate", resp.Body["key"])
		assert.Equal(t, "75.00", resp.Body["value"])
		assert.Equal(t, before+1, h.settings.broadcasts)
	})

	t.Run("update accepts keys that do not exist yet", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/settings/maintenance.sla_days",
			Body:   map[string]interface{}{"value": "5"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "5", resp.Body["value"])
	})

	t.Run("list returns every stored setting", func(t *testing.T) {
		for _, kv := range [][2]string{
			{"toner.low_stock_reorder_level", "3"},
			{"notifications.email_enabled", "true"},
		} {
			resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
				Method: http.MethodPut,
				Path:   "/api/v1/settings/" + kv[0],
				Body:   map[string]interface{}{"value": kv[1]},
			})
			require.Equal(t, http.StatusOK, resp.Code)
		}

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/settings",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		keys := map[string]string{}
		for _, raw := range resp.Body["data"].([]interface{}) {
			row := raw.(map[string]interface{})
			keys[row["key"].(string)] = row["value"].(string)
		}
		assert.Equal(t, "3", keys["toner.low_stock_reorder_level"])
		assert.Equal(t, "true", keys["notifications.email_enabled"])
	})

	t.Run("technicians cannot touch settings", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(tech), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/settings",
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = testutil.MakeRequest(t, h.routerAs(tech), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/settings/rental.default_monthly_rate",
			Body:   map[string]interface{}{"value": "0"},
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "PERMISSION_DENIED", errorCode(t, resp))
	})
}
