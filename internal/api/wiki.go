package api

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

// Wiki article workflow states. Drafts circulate among staff; only
// published articles are meant for client eyes.
const (
	wikiDraft     = "draft"
	wikiPending   = "pending"
	wikiPublished = "published"
)

type wikiResponse struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	AuthorID   uuid.UUID  `json:"author_id"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toWikiResponse(a *store.WikiArticle) wikiResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return wikiResponse{
		ID:         a.ID,
		Title:      a.Title,
		Slug:       a.Slug,
		Body:       a.Body,
		Status:     a.Status,
		AuthorID:   a.AuthorID,
		ApprovedBy: a.ApprovedBy,
		Tags:       tags,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *Server) ListWikiArticles(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())
	limit, offset := parsePagination(r)

	// Clients only read published articles; staff see the whole pipeline
	// and may filter by status.
	status := r.URL.Query().Get("status")
	if !s.authz.HasPermission(user, rbac.CreateWiki) {
		status = wikiPublished
	}

	var (
		articles []store.WikiArticle
		err      error
	)
	if status != "" {
		articles, err = s.db.Store().ListWikiArticlesByStatus(r.Context(), status, limit, offset)
	} else {
		articles, err = s.db.Store().ListWikiArticles(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("Failed to list wiki articles", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}
	total, err := s.db.Store().CountWikiArticles(r.Context())
	if err != nil {
		logger.Error("Failed to count wiki articles", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]wikiResponse, len(articles))
	for i := range articles {
		out[i] = toWikiResponse(&articles[i])
	}
	writeList(w, out, total, limit, offset)
}

type wikiRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

func (r wikiRequest) validate() []ErrorDetail {
	var details []ErrorDetail
	if strings.TrimSpace(r.Title) == "" {
		details = append(details, ErrorDetail{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(r.Body) == "" {
		details = append(details, ErrorDetail{Field: "body", Message: "body is required"})
	}
	return details
}

func (s *Server) CreateWikiArticle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())

	var req wikiRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	article, err := s.db.Store().CreateWikiArticle(r.Context(), store.CreateWikiArticleParams{
		Title:    req.Title,
		Slug:     slugify(req.Title),
		Body:     req.Body,
		Status:   wikiDraft,
		AuthorID: user.ID,
		Tags:     req.Tags,
	})
	if err != nil {
		logger.Error("Failed to create wiki article", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Wiki article created", "article_id", article.ID)
	writeJSON(w, http.StatusCreated, toWikiResponse(article))
}

func (s *Server) GetWikiArticle(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetAuthenticatedUser(r.Context())

	article, err := s.db.Store().GetWikiArticleBySlug(r.Context(), strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug"))))
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}

	// Unpublished articles stay staff-only.
	if article.Status != wikiPublished && !s.authz.HasPermission(user, rbac.CreateWiki) {
		NotFound("Wiki article").Write(w, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toWikiResponse(article))
}

func (s *Server) UpdateWikiArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}
	id, okID := parseIDParam(w, r, "id")
	if !okID {
		return
	}

	article, err := s.db.Store().GetWikiArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}

	// Editors with the blanket permission touch anything; authors only
	// their own articles.
	if !s.authz.HasPermission(user, rbac.UpdateWiki) {
		if !s.authz.HasPermission(user, rbac.UpdateOwnWiki) || article.AuthorID != user.ID {
			PermissionDenied("Insufficient permissions").Write(w, http.StatusForbidden)
			return
		}
	}

	var req wikiRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		ValidationErr("Validation failed", details).Write(w, http.StatusBadRequest)
		return
	}

	updated, err := s.db.Store().UpdateWikiArticle(r.Context(), store.UpdateWikiArticleParams{
		ID:    id,
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}
	writeJSON(w, http.StatusOK, toWikiResponse(updated))
}

func (s *Server) SubmitWikiArticle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	article, err := s.db.Store().GetWikiArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}
	if article.Status != wikiDraft {
		Conflict("Only drafts can be submitted for review").Write(w, http.StatusConflict)
		return
	}

	updated, err := s.db.Store().UpdateWikiArticleStatus(r.Context(), id, wikiPending, nil)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}

	s.notifyRole(r.Context(), user, rbac.RoleAdmin, "wiki_article", id,
		"A wiki article is waiting for review", "", nil)

	logger.Info("Wiki article submitted", "article_id", id)
	writeJSON(w, http.StatusOK, toWikiResponse(updated))
}

func (s *Server) ApproveWikiArticle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	user, _ := auth.GetAuthenticatedUser(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	article, err := s.db.Store().GetWikiArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}
	if article.Status != wikiPending {
		Conflict("Only pending articles can be approved").Write(w, http.StatusConflict)
		return
	}

	updated, err := s.db.Store().UpdateWikiArticleStatus(r.Context(), id, wikiPublished, &user.ID)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}

	logger.Info("Wiki article published", "article_id", id, "approved_by", user.ID)
	writeJSON(w, http.StatusOK, toWikiResponse(updated))
}

func (s *Server) RejectWikiArticle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	article, err := s.db.Store().GetWikiArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}
	if article.Status != wikiPending {
		Conflict("Only pending articles can be rejected").Write(w, http.StatusConflict)
		return
	}

	updated, err := s.db.Store().UpdateWikiArticleStatus(r.Context(), id, wikiDraft, nil)
	if err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}

	logger.Info("Wiki article sent back to draft", "article_id", id)
	writeJSON(w, http.StatusOK, toWikiResponse(updated))
}

func (s *Server) DeleteWikiArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.db.Store().DeleteWikiArticle(r.Context(), id); err != nil {
		respondError(w, r, err, "Wiki article")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
