package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWTService mints and verifies the short-lived access tokens. Refresh
// tokens are opaque and live in Redis, so the JWT layer only ever deals
// with access tokens.
type JWTService struct {
	signingKey jwk.Key
	issuer     string
	expiry     time.Duration
}

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
}

func NewJWTService(signingKey []byte, issuer string, expiry time.Duration) (*JWTService, error) {
	key, err := jwk.FromRaw(signingKey)
	if err != nil {
		return nil, fmt.Errorf("build signing key: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
		return nil, fmt.Errorf("set signing algorithm: %w", err)
	}

	return &JWTService{
		signingKey: key,
		issuer:     issuer,
		expiry:     expiry,
	}, nil
}

// GenerateToken issues an access token for the user. The subject carries
// the user ID; there are no custom claims to keep tokens small.
func (s *JWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(userID.String()).
		IssuedAt(now).
		Expiration(now.Add(s.expiry)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// ValidateToken checks the signature, issuer and expiry, and extracts the
// user ID from the subject.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	parsed, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.signingKey),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	userID, err := uuid.Parse(parsed.Subject())
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user ID: %w", err)
	}

	return &TokenClaims{UserID: userID}, nil
}
