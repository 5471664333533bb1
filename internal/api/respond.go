package api

import (
	"encoding/json"
	"net/http"

	"github.com/printdesk/pd-backend/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a request body into dst and writes the 400 itself on
// malformed input. Returns false when the handler should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		ValidationErr("Invalid request body", []ErrorDetail{{Field: "body", Message: err.Error()}}).
			Write(w, http.StatusBadRequest)
		return false
	}
	return true
}

// PaginationMeta rides along with every list response.
type PaginationMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type listResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func writeList[T any](w http.ResponseWriter, items []T, total, limit, offset int64) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{
		Data: items,
		Meta: PaginationMeta{
			Total:   int(total),
			Limit:   int(limit),
			Offset:  int(offset),
			HasMore: int(offset)+len(items) < int(total),
		},
	})
}
