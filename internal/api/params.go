package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseIDParam reads a UUID path parameter and writes the 400 itself on
// garbage. Returns false when the handler should stop.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		ValidationErr("Invalid identifier", []ErrorDetail{
			{Field: name, Message: "must be a valid UUID"},
		}).Write(w, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
