package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserClaimsKey contextKey = "user_claims"
)

// AuthenticatedUser is the per-request session snapshot. The role is
// resolved once when the request is authenticated; authorization checks
// read this snapshot and never go back to the database.
type AuthenticatedUser struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  rbac.Role
}

type Authenticator struct {
	jwtService *JWTService
	store      *store.Store
}

func NewAuthenticator(jwtService *JWTService, st *store.Store) *Authenticator {
	return &Authenticator{
		jwtService: jwtService,
		store:      st,
	}
}

// Middleware validates the bearer token, loads the profile row and stashes
// the AuthenticatedUser in the request context. Requests with a missing or
// invalid token are rejected with 401 before any handler runs.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "authorization header missing")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			unauthorized(w, "invalid authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := a.jwtService.ValidateToken(ctx, token)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		profile, err := a.store.GetProfile(ctx, claims.UserID)
		if err != nil {
			unauthorized(w, "user not found")
			return
		}

		role, ok := rbac.ParseRole(profile.Role)
		if !ok {
			// A profile with an unrecognized role authenticates but
			// carries no permissions (fail-closed).
			logging.Warn("profile has unknown role", "user_id", profile.ID, "role", profile.Role)
		}

		user := &AuthenticatedUser{
			ID:    profile.ID,
			Email: profile.Email,
			Name:  strings.TrimSpace(profile.FirstName + " " + profile.LastName),
			Role:  role,
		}

		ctx = context.WithValue(ctx, UserIDKey, profile.ID)
		ctx = context.WithValue(ctx, UserClaimsKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"AUTHENTICATION_REQUIRED","message":"` + msg + `"}}`))
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(UserClaimsKey).(*AuthenticatedUser)
	return user, ok
}

// ContextWithUser is used by tests and internal callers that already hold
// a resolved session.
func ContextWithUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, UserClaimsKey, user)
}
