package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/pd-backend/internal/testutil"
)

func TestServer_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping user tests in short mode")
	}

	h := newTestHarness(t)
	admin := userFor(h.db.NewProfile(t).WithEmail("admin@users.test").AsAdmin().Create())
	tech := userFor(h.db.NewProfile(t).WithEmail("tech@users.test").AsTechnician().Create())

	t.Run("me includes the effective permission set", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(tech), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/users/me",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, tech.Email, resp.Body["email"])
		assert.Equal(t, "technician", resp.Body["role"])

		perms, ok := resp.Body["permissions"].([]interface{})
		require.True(t, ok, "expected a permissions array")
		assert.Contains(t, perms, "update:printers")
		assert.NotContains(t, perms, "delete:printers")
	})

	t.Run("listing is restricted to admins", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(tech), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/users",
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "PERMISSION_DENIED", errorCode(t, resp))

		resp = testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/users",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].([]interface{})
		assert.GreaterOrEqual(t, len(data), 2)
	})

	t.Run("role filter rejects unknown roles", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method:      http.MethodGet,
			Path:        "/api/v1/users",
			QueryParams: map[string]string{"role": "superuser"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("role filter returns matching users only", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method:      http.MethodGet,
			Path:        "/api/v1/users",
			QueryParams: map[string]string{"role": "technician"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		for _, raw := range resp.Body["data"].([]interface{}) {
			row := raw.(map[string]interface{})
			assert.Equal(t, "technician", row["role"])
		}
	})

	t.Run("update changes name and role", func(t *testing.T) {
		target := h.db.NewProfile(t).WithEmail("promote@users.test").AsClient().Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/users/" + target.ID.String(),
			Body: map[string]interface{}{
				"first_name": "Dana",
				"last_name":  "Reyes",
				"role":       "technician",
			},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Dana", resp.Body["first_name"])
		assert.Equal(t, "technician", resp.Body["role"])
	})

	t.Run("update validates the role", func(t *testing.T) {
		target := h.db.NewProfile(t).WithEmail("badrole@users.test").AsClient().Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodPut,
			Path:   "/api/v1/users/" + target.ID.String(),
			Body: map[string]interface{}{
				"first_name": "Dana",
				"last_name":  "Reyes",
				"role":       "owner",
			},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	})

	t.Run("admins cannot delete their own account", func(t *testing.T) {
		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/users/" + admin.ID.String(),
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("delete removes another user", func(t *testing.T) {
		target := h.db.NewProfile(t).WithEmail("gone@users.test").AsClient().Create()

		resp := testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodDelete,
			Path:   "/api/v1/users/" + target.ID.String(),
		})
		require.Equal(t, http.StatusNoContent, resp.Code)

		resp = testutil.MakeRequest(t, h.routerAs(admin), testutil.Request{
			Method: http.MethodGet,
			Path:   "/api/v1/users/" + target.ID.String(),
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
