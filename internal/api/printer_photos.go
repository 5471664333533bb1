package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/printdesk/pd-backend/internal/middleware"
)

const maxPhotoUploadBytes = 12 << 20

func (s *Server) UploadPrinterPhoto(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := s.db.Store().GetPrinter(r.Context(), id); err != nil {
		respondError(w, r, err, "Printer")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		ValidationErr("Invalid multipart form", []ErrorDetail{
			{Field: "photo", Message: err.Error()},
		}).Write(w, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "photo", Message: "a photo file is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}
	defer file.Close()

	photo, err := s.media.UploadPrinterPhoto(r.Context(), id, file, header)
	if err != nil {
		logger.Error("Failed to upload printer photo", "printer_id", id, "error", err)
		ValidationErr("Photo rejected", []ErrorDetail{
			{Field: "photo", Message: err.Error()},
		}).Write(w, http.StatusBadRequest)
		return
	}

	logger.Info("Printer photo uploaded", "printer_id", id, "key", photo.Key)
	writeJSON(w, http.StatusCreated, photo)
}

func (s *Server) ListPrinterPhotos(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	photos, err := s.media.ListPrinterPhotos(r.Context(), id)
	if err != nil {
		logger.Error("Failed to list printer photos", "printer_id", id, "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeList(w, photos, int64(len(photos)), int64(len(photos)), 0)
}

func (s *Server) DeletePrinterPhoto(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	// Keys carry slashes, so they arrive URL-encoded.
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		ValidationErr("Validation failed", []ErrorDetail{
			{Field: "key", Message: "a valid photo key is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	if err := s.media.DeletePrinterPhoto(r.Context(), id, key); err != nil {
		logger.Error("Failed to delete printer photo", "printer_id", id, "key", key, "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	logger.Info("Printer photo deleted", "printer_id", id, "key", key)
	writeJSON(w, http.StatusNoContent, nil)
}
