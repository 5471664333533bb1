package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/google/uuid"
)

// Request represents a test HTTP request
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	Headers     map[string]string
	QueryParams map[string]string
}

// Response represents a test HTTP response
type Response struct {
	*httptest.ResponseRecorder
	Body map[string]interface{}
}

// MakeRequest executes a test HTTP request directly against the handler
func MakeRequest(t *testing.T, handler http.Handler, req Request) *Response {
	var bodyReader *bytes.Reader

	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	var httpReq *http.Request
	var err error

	if bodyReader != nil {
		httpReq, err = http.NewRequest(req.Method, req.Path, bodyReader)
	} else {
		httpReq, err = http.NewRequest(req.Method, req.Path, nil)
	}

	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	// Set headers
	if req.Headers != nil {
		for key, value := range req.Headers {
			httpReq.Header.Set(key, value)
		}
	}

	// Set query parameters
	if req.QueryParams != nil {
		q := httpReq.URL.Query()
		for key, value := range req.QueryParams {
			q.Add(key, value)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	// Set default content type for JSON requests
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httpReq)

	// Parse response body
	var responseBody map[string]interface{}
	if recorder.Body.Len() > 0 {
		decoder := json.NewDecoder(bytes.NewReader(recorder.Body.Bytes()))
		if err := decoder.Decode(&responseBody); err != nil {
			t.Logf("Failed to decode response body: %v", err)
		}
	}

	return &Response{
		ResponseRecorder: recorder,
		Body:             responseBody,
	}
}

// TestUser represents a resolved session for handler tests
type TestUser struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  rbac.Role
}

// NewTestUser creates a test user with default values
func NewTestUser() *TestUser {
	return &TestUser{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "Test User",
		Role:  rbac.RoleClient,
	}
}

// WithRole sets the user's role
func (u *TestUser) WithRole(role rbac.Role) *TestUser {
	u.Role = role
	return u
}

// ToAuthenticatedUser converts TestUser to auth.AuthenticatedUser
func (u *TestUser) ToAuthenticatedUser() *auth.AuthenticatedUser {
	return &auth.AuthenticatedUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// ContextWithUser adds a test user to the context the way the
// authentication middleware would
func ContextWithUser(ctx context.Context, user *TestUser) context.Context {
	return auth.ContextWithUser(ctx, user.ToAuthenticatedUser())
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// NewUUID returns a deterministic UUID for testing
func NewUUID() uuid.UUID {
	return uuid.MustParse("12345678-1234-5678-9012-123456789012")
}

// AssertJSON checks if the response body contains expected JSON fields
func AssertJSON(t *testing.T, resp *Response, field string, expected interface{}) {
	if resp.Body[field] != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, resp.Body[field])
	}
}

// AssertJSONExists checks if a JSON field exists in the response
func AssertJSONExists(t *testing.T, resp *Response, field string) {
	if _, exists := resp.Body[field]; !exists {
		t.Errorf("Expected field %s to exist in response", field)
	}
}
