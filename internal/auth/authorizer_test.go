package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/stretchr/testify/assert"
)

func sessionWithRole(role rbac.Role) *AuthenticatedUser {
	return &AuthenticatedUser{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  role,
	}
}

func TestAuthorizer_HasPermission_AdminBypass(t *testing.T) {
	authz := NewAuthorizer()
	admin := sessionWithRole(rbac.RoleAdmin)

	// every permission in every role's set
	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleTechnician, rbac.RoleClient} {
		for _, p := range rbac.PermissionsForRole(role) {
			assert.True(t, authz.HasPermission(admin, p), "admin denied %s", p)
		}
	}

	// and permissions outside any explicit set
	assert.True(t, authz.HasPermission(admin, "nonexistent:permission"))
}

func TestAuthorizer_HasPermission_FailClosed(t *testing.T) {
	authz := NewAuthorizer()

	t.Run("no session", func(t *testing.T) {
		assert.False(t, authz.HasPermission(nil, rbac.ReadPrinters))
	})

	t.Run("unresolved role", func(t *testing.T) {
		assert.False(t, authz.HasPermission(sessionWithRole(""), rbac.ReadPrinters))
	})

	t.Run("unknown permission", func(t *testing.T) {
		assert.False(t, authz.HasPermission(sessionWithRole(rbac.RoleTechnician), "nonexistent:permission"))
		assert.False(t, authz.HasPermission(sessionWithRole(rbac.RoleClient), "nonexistent:permission"))
	})
}

func TestAuthorizer_HasPermission_RoleSets(t *testing.T) {
	authz := NewAuthorizer()

	tech := sessionWithRole(rbac.RoleTechnician)
	assert.True(t, authz.HasPermission(tech, rbac.UpdatePrinters))
	assert.True(t, authz.HasPermission(tech, rbac.CreateMaintenance))
	assert.False(t, authz.HasPermission(tech, rbac.DeletePrinters))
	assert.False(t, authz.HasPermission(tech, rbac.TransferPrinters))

	client := sessionWithRole(rbac.RoleClient)
	assert.True(t, authz.HasPermission(client, rbac.ReadPrinters))
	assert.True(t, authz.HasPermission(client, rbac.ReadWiki))
	assert.False(t, authz.HasPermission(client, rbac.UpdatePrinters))
}

func TestAuthorizer_HasRole(t *testing.T) {
	authz := NewAuthorizer()

	t.Run("admin satisfies every role check", func(t *testing.T) {
		admin := sessionWithRole(rbac.RoleAdmin)
		assert.True(t, authz.HasRole(admin, rbac.RoleAdmin))
		assert.True(t, authz.HasRole(admin, rbac.RoleTechnician))
		assert.True(t, authz.HasRole(admin, rbac.RoleClient))
	})

	t.Run("exact match otherwise", func(t *testing.T) {
		tech := sessionWithRole(rbac.RoleTechnician)
		assert.True(t, authz.HasRole(tech, rbac.RoleTechnician))
		assert.False(t, authz.HasRole(tech, rbac.RoleAdmin))
		assert.False(t, authz.HasRole(tech, rbac.RoleClient))
	})

	t.Run("no session", func(t *testing.T) {
		assert.False(t, authz.HasRole(nil, rbac.RoleClient))
	})
}

func TestAuthorizer_Idempotent(t *testing.T) {
	authz := NewAuthorizer()
	tech := sessionWithRole(rbac.RoleTechnician)

	first := authz.HasPermission(tech, rbac.UpdatePrinters)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, authz.HasPermission(tech, rbac.UpdatePrinters))
	}
}
