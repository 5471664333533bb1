package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTService(t *testing.T, secret string, expiry time.Duration) *JWTService {
	t.Helper()
	service, err := NewJWTService([]byte(secret), "printdesk", expiry)
	require.NoError(t, err)
	return service
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newJWTService(t, "test-secret-key", time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	token, err := service.GenerateToken(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, token, ".")

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	service := newJWTService(t, "test-secret-key", time.Hour)

	_, err := service.ValidateToken(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	minter := newJWTService(t, "secret-one", time.Hour)
	verifier := newJWTService(t, "secret-two", time.Hour)
	ctx := context.Background()

	token, err := minter.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	minter, err := NewJWTService([]byte("shared-secret"), "someone-else", time.Hour)
	require.NoError(t, err)
	verifier := newJWTService(t, "shared-secret", time.Hour)
	ctx := context.Background()

	token, err := minter.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	service := newJWTService(t, "test-secret-key", time.Millisecond)
	ctx := context.Background()

	token, err := service.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.ValidateToken(ctx, token)
	assert.Error(t, err)
}
