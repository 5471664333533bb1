package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/printdesk/pd-backend/internal/config"
)

// NewCORSHandler builds the CORS middleware from config. The allowed
// origin list must name the storefront and dashboard hosts explicitly;
// wildcard origins break cookie-based refresh.
func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
