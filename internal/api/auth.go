package api

import (
	"errors"
	"net/http"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/queue"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		ValidationErr("Email and password are required", nil).Write(w, http.StatusBadRequest)
		return
	}

	access, refresh, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Unauthorized("Invalid email or password").Write(w, http.StatusUnauthorized)
			return
		}
		logger.Error("Sign-in failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

type signUpRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Department *string `json:"department,omitempty"`
}

func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var details []ErrorDetail
	if req.Email == "" {
		details = append(details, ErrorDetail{Field: "email", Message: "email is required"})
	}
	if len(req.Password) < 8 {
		details = append(details, ErrorDetail{Field: "password", Message: "password must be at least 8 characters"})
	}
	if req.FirstName == "" {
		details = append(details, ErrorDetail{Field: "first_name", Message: "first name is required"})
	}
	if req.LastName == "" {
		details = append(details, ErrorDetail{Field: "last_name", Message: "last name is required"})
	}
	if len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	profile, err := s.auth.SignUp(r.Context(), auth.SignUpParams{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			Conflict("Email already registered").Write(w, http.StatusConflict)
			return
		}
		logger.Error("Sign-up failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("New account registered", "user_id", profile.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(profile))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	access, refresh, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			Unauthorized("Invalid or expired refresh token").Write(w, http.StatusUnauthorized)
			return
		}
		logger.Error("Token refresh failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.SignOut(r.Context(), req.RefreshToken); err != nil {
		logger.Warn("Sign-out failed", "error", err)
	}
	// Sign-out always succeeds from the client's point of view.
	writeJSON(w, http.StatusNoContent, nil)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (s *Server) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	code, err := s.auth.RequestPasswordReset(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		// Do not reveal whether the address exists.
	case errors.Is(err, auth.ErrResetCooldown):
		NewError(CodeConflict, "Please wait before requesting another reset code").
			Write(w, http.StatusTooManyRequests)
		return
	case err != nil:
		logger.Error("Password reset request failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	default:
		if _, err := s.queue.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
			To:      req.Email,
			Subject: "Your password reset code",
			Body:    "Your password reset code is " + code + ". It expires shortly.",
		}); err != nil {
			logger.Error("Failed to enqueue reset email", "error", err)
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type passwordResetConfirm struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req passwordResetConfirm
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < 8 {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "new_password", Message: "password must be at least 8 characters"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	err := s.auth.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrResetInvalid), errors.Is(err, auth.ErrUserNotFound):
		Unauthorized("Invalid or expired reset code").Write(w, http.StatusUnauthorized)
	case errors.Is(err, auth.ErrResetMaxAttempts):
		NewError(CodeConflict, "Maximum reset attempts exceeded").Write(w, http.StatusTooManyRequests)
	case err != nil:
		logger.Error("Password reset confirm failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusNoContent, nil)
	}
}
