package api

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/testutil"
)

// TestServer_PermissionGate exercises the permission middleware in
// isolation with a scripted authorizer, so the outcomes are pinned
// independently of the real role table.
func TestServer_PermissionGate(t *testing.T) {
	// gatedRouter mounts a single probe route behind the permission
	// middleware. The probe records whether the handler ran.
	gatedRouter := func(authz AuthorizerService, user *testutil.TestUser, reached *bool) http.Handler {
		s := &Server{authz: authz}
		r := chi.NewMux()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if user != nil {
					req = req.WithContext(testutil.ContextWithUser(req.Context(), user))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.With(s.require(rbac.DeletePrinters)).Get("/probe", func(w http.ResponseWriter, r *http.Request) {
			*reached = true
			w.WriteHeader(http.StatusNoContent)
		})
		return r
	}

	t.Run("denied check yields 403 before the handler", func(t *testing.T) {
		authz := testutil.NewMockAuthorizer(t)
		authz.On("HasPermission", mock.Anything, rbac.DeletePrinters).Return(false).Once()

		var reached bool
		resp := testutil.MakeRequest(t, gatedRouter(authz, testutil.NewTestUser(), &reached), testutil.Request{
			Method: http.MethodGet,
			Path:   "/probe",
		})

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "PERMISSION_DENIED", errorCode(t, resp))
		assert.False(t, reached, "handler ran despite a denied check")
		authz.AssertExpectations(t)
	})

	t.Run("allowed check passes through", func(t *testing.T) {
		authz := testutil.NewMockAuthorizer(t)
		authz.On("HasPermission", mock.Anything, rbac.DeletePrinters).Return(true).Once()

		var reached bool
		resp := testutil.MakeRequest(t, gatedRouter(authz, testutil.NewTestUser(), &reached), testutil.Request{
			Method: http.MethodGet,
			Path:   "/probe",
		})

		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, reached)
		authz.AssertExpectations(t)
	})

	t.Run("missing session yields 401 without consulting the authorizer", func(t *testing.T) {
		authz := testutil.NewMockAuthorizer(t)

		var reached bool
		resp := testutil.MakeRequest(t, gatedRouter(authz, nil, &reached), testutil.Request{
			Method: http.MethodGet,
			Path:   "/probe",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "AUTHENTICATION_REQUIRED", errorCode(t, resp))
		assert.False(t, reached)
		authz.AssertNotCalled(t, "HasPermission")
	})
}
