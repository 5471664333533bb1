package auth

import (
	"github.com/printdesk/pd-backend/internal/rbac"
)

// Authorizer answers role and permission questions for a session snapshot.
// It is pure: no I/O, no mutation, the same inputs always produce the same
// answer. Constructed once and handed to every handler that gates an
// action.
//
// Both checks are fail-closed: a nil session (not authenticated, or the
// role not yet resolved) never passes anything.
type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// HasRole reports whether the session holds the given role. Admin
// satisfies every role check; the UI relies on this to show admin users
// everything the checked role can see.
func (a *Authorizer) HasRole(user *AuthenticatedUser, role rbac.Role) bool {
	if user == nil {
		return false
	}
	if user.Role == rbac.RoleAdmin {
		return true
	}
	return user.Role == role
}

// HasPermission reports whether the session may perform the permission.
// Admin short-circuits to true for every permission, including tokens
// outside the closed set. Everyone else goes through the static table;
// unknown permissions and unknown roles are false.
func (a *Authorizer) HasPermission(user *AuthenticatedUser, perm rbac.Permission) bool {
	if user == nil {
		return false
	}
	if user.Role == rbac.RoleAdmin {
		return true
	}
	return rbac.RoleHasPermission(user.Role, perm)
}
