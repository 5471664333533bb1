package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrResetCooldown      = errors.New("please wait before requesting another reset code")
	ErrResetInvalid       = errors.New("invalid or expired reset code")
	ErrResetMaxAttempts   = errors.New("maximum reset attempts exceeded")
	ErrRefreshInvalid     = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles password sign-in/sign-up, rotating refresh tokens
// and the password-reset OTP flow.
type AuthService struct {
	redis            *redisStore
	jwt              *JWTService
	store            *store.Store
	resetExpiry      time.Duration
	resetCooldown    time.Duration
	resetMaxAttempts int
	refreshExpiry    time.Duration
}

func NewAuthService(redisClient *redis.Client, jwtSvc *JWTService, st *store.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		redis:            newRedisStore(redisClient),
		jwt:              jwtSvc,
		store:            st,
		resetExpiry:      cfg.ResetOTPExpiry,
		resetCooldown:    cfg.ResetOTPCooldown,
		resetMaxAttempts: cfg.ResetOTPMaxAttempts,
		refreshExpiry:    cfg.RefreshExpiry,
	}
}

// SignIn checks the password and returns a new access + refresh token pair.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	profile, err := s.store.GetProfileByEmail(ctx, email)
	if err != nil {
		// Burn a comparison anyway so a miss is not observably faster.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidsaltinvalidsaltinvalid"), []byte(password))
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	logging.Info("user signed in", "email", email)
	return s.issueTokenPair(ctx, profile.ID)
}

type SignUpParams struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department *string
}

// SignUp registers a storefront account. Self-registration always receives
// the client role; staff roles are granted by an admin afterwards.
func (s *AuthService) SignUp(ctx context.Context, arg SignUpParams) (*store.Profile, error) {
	if _, err := s.store.GetProfileByEmail(ctx, arg.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(arg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	profile, err := s.store.CreateProfile(ctx, store.CreateProfileParams{
		Email:        arg.Email,
		PasswordHash: string(hash),
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Role:         string(rbac.RoleClient),
		Department:   arg.Department,
	})
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	logging.Info("user signed up", "email", arg.Email, "user_id", profile.ID)
	return profile, nil
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error) {
	hash := hashString(refreshToken)

	userIDStr, err := s.redis.getRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrRefreshInvalid
		}
		return "", "", fmt.Errorf("retrieving refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid user ID in refresh token: %w", err)
	}

	if err := s.redis.deleteRefreshToken(ctx, hash); err != nil {
		return "", "", fmt.Errorf("deleting refresh token: %w", err)
	}

	newAccess, newRefresh, err = s.issueTokenPair(ctx, userID)
	if err != nil {
		return "", "", err
	}

	logging.Info("refresh token rotated", "user_id", userID)
	return newAccess, newRefresh, nil
}

// SignOut revokes the refresh token.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	hash := hashString(refreshToken)

	userIDStr, err := s.redis.getRefreshToken(ctx, hash)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := s.redis.deleteRefreshToken(ctx, hash); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	if userIDStr != "" {
		logging.Info("user signed out", "user_id", userIDStr)
	}
	return nil
}

// RequestPasswordReset generates a 6-digit code and returns the plaintext
// so the caller can email it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if _, err := s.store.GetProfileByEmail(ctx, email); err != nil {
		return "", ErrUserNotFound
	}

	on, err := s.redis.isOnCooldown(ctx, email)
	if err != nil {
		return "", fmt.Errorf("checking reset cooldown: %w", err)
	}
	if on {
		return "", ErrResetCooldown
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", fmt.Errorf("generating reset code: %w", err)
	}

	if err := s.redis.storeResetHash(ctx, email, hashString(code), s.resetExpiry); err != nil {
		return "", fmt.Errorf("storing reset code: %w", err)
	}

	if err := s.redis.setCooldown(ctx, email, s.resetCooldown); err != nil {
		return "", fmt.Errorf("setting reset cooldown: %w", err)
	}

	return code, nil
}

// ConfirmPasswordReset checks the code and replaces the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	storedHash, err := s.redis.getResetHash(ctx, email)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrResetInvalid
		}
		return fmt.Errorf("retrieving reset code: %w", err)
	}

	attempts, err := s.redis.incrResetAttempts(ctx, email, s.resetExpiry)
	if err != nil {
		return fmt.Errorf("incrementing reset attempts: %w", err)
	}

	if attempts > int64(s.resetMaxAttempts) {
		_ = s.redis.deleteReset(ctx, email)
		return ErrResetMaxAttempts
	}

	if hashString(code) != storedHash {
		if attempts >= int64(s.resetMaxAttempts) {
			_ = s.redis.deleteReset(ctx, email)
			return ErrResetMaxAttempts
		}
		return ErrResetInvalid
	}

	if err := s.redis.deleteReset(ctx, email); err != nil {
		return fmt.Errorf("deleting reset code: %w", err)
	}

	profile, err := s.store.GetProfileByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.store.UpdateProfilePassword(ctx, profile.ID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	logging.Info("password reset completed", "user_id", profile.ID)
	return nil
}

// issueTokenPair generates a JWT access token and a random refresh token.
func (s *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("generating access token: %w", err)
	}

	rawRefresh, err := generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	hash := hashString(rawRefresh)
	if err := s.redis.storeRefreshToken(ctx, hash, userID.String(), s.refreshExpiry); err != nil {
		return "", "", fmt.Errorf("storing refresh token: %w", err)
	}

	return accessToken, rawRefresh, nil
}

// returns random 6-digit string
func generateOTPCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// returns 32 random bytes as a hex string (64 chars).
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
