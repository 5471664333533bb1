package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/middleware"
)

// storefrontPrinter is the public shape: no ownership, assignment or
// notes, just what a prospective renter needs to see.
type storefrontPrinter struct {
	ID        uuid.UUID `json:"id"`
	Make      string    `json:"make"`
	Series    string    `json:"series"`
	Model     string    `json:"model"`
	Location  *string   `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) ListStorefrontPrinters(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	limit, offset := parsePagination(r)

	printers, err := s.db.Store().ListRentablePrinters(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list rentable printers", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	out := make([]storefrontPrinter, len(printers))
	for i, p := range printers {
		out[i] = storefrontPrinter{
			ID:        p.ID,
			Make:      p.Make,
			Series:    p.Series,
			Model:     p.Model,
			Location:  p.Location,
			CreatedAt: p.CreatedAt,
		}
	}
	writeList(w, out, int64(len(out)), limit, offset)
}
