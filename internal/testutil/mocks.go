package testutil

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/rbac"
)

// MockAuthorizer is a testify mock for the authorization service, for
// tests that pin specific allow/deny outcomes instead of the real table.
type MockAuthorizer struct {
	mock.Mock
}

func NewMockAuthorizer(t *testing.T) *MockAuthorizer {
	mockAuthz := &MockAuthorizer{}
	mockAuthz.Test(t)
	return mockAuthz
}

func (m *MockAuthorizer) HasRole(user *auth.AuthenticatedUser, role rbac.Role) bool {
	args := m.Called(user, role)
	return args.Bool(0)
}

func (m *MockAuthorizer) HasPermission(user *auth.AuthenticatedUser, perm rbac.Permission) bool {
	args := m.Called(user, perm)
	return args.Bool(0)
}

// AllowAll makes the authorizer approve every check
func (m *MockAuthorizer) AllowAll() *MockAuthorizer {
	m.On("HasRole", mock.Anything, mock.Anything).Return(true).Maybe()
	m.On("HasPermission", mock.Anything, mock.Anything).Return(true).Maybe()
	return m
}

// DenyAll makes the authorizer reject every check
func (m *MockAuthorizer) DenyAll() *MockAuthorizer {
	m.On("HasRole", mock.Anything, mock.Anything).Return(false).Maybe()
	m.On("HasPermission", mock.Anything, mock.Anything).Return(false).Maybe()
	return m
}
