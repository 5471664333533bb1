package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"`
	Department  *string   `json:"department,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(p *store.Profile) userResponse {
	return userResponse{
		ID:         p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Role:       p.Role,
		Department: p.Department,
		CreatedAt:  p.CreatedAt,
	}
}

// GetCurrentUser also reports the effective permission set for the
// session so the frontend can shape its navigation.
func (s *Server) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	profile, err := s.db.Store().GetProfile(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, "User")
		return
	}

	resp := toUserResponse(profile)
	for _, perm := range rbac.PermissionsForRole(user.Role) {
		resp.Permissions = append(resp.Permissions, string(perm))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	var (
		profiles []store.Profile
		total    int64
		err      error
	)
	if role := r.URL.Query().Get("role"); role != "" {
		if _, ok := rbac.ParseRole(role); !ok {
			ValidationErr("Unknown role filter", []ErrorDetail{
				{Field: "role", Message: "must be admin, technician or client"},
			}).Write(w, http.StatusBadRequest)
			return
		}
		profiles, err = s.db.Store().ListProfilesByRole(r.Context(), role)
		total = int64(len(profiles))
	} else {
		profiles, err = s.db.Store().ListProfiles(r.Context(), limit, offset)
		if err == nil {
			total, err = s.db.Store().CountProfiles(r.Context())
		}
	}
	if err != nil {
		logger.Error("Failed to list users", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]userResponse, len(profiles))
	for i := range profiles {
		out[i] = toUserResponse(&profiles[i])
	}
	writeList(w, out, total, limit, offset)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	profile, err := s.db.Store().GetProfile(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(profile))
}

type userUpdateRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var details []ErrorDetail
	if req.FirstName == "" {
		details = append(details, ErrorDetail{Field: "first_name", Message: "first name is required"})
	}
	if req.LastName == "" {
		details = append(details, ErrorDetail{Field: "last_name", Message: "last name is required"})
	}
	if _, valid := rbac.ParseRole(req.Role); !valid {
		details = append(details, ErrorDetail{Field: "role", Message: "must be admin, technician or client"})
	}
	if len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	profile, err := s.db.Store().UpdateProfile(r.Context(), store.UpdateProfileParams{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		respondError(w, r, err, "User")
		return
	}

	logger.Info("User updated", "user_id", id, "role", req.Role)
	writeJSON(w, http.StatusOK, toUserResponse(profile))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if user != nil && user.ID == id {
		Conflict("You cannot delete your own account").Write(w, http.StatusConflict)
		return
	}

	if err := s.db.Store().DeleteProfile(r.Context(), id); err != nil {
		respondError(w, r, err, "User")
		return
	}
	logger.Info("User deleted", "user_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}
