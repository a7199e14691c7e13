package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/snapnest/booking-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
}

// CORS returns middleware that applies the configured origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader, IdempotencyKeyHeader, "X-Requested-With", RequestIDHeader},
		ExposedHeaders:   []string{SessionHeader, ReplayedHeader, RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
