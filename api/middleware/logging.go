package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/snapnest/booking-backend/pkg/logger"
)

// Logging writes one access line per request once the handler returns. The
// route is the chi pattern so session-scoped paths group cleanly.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method":      r.Method,
				"route":       routePattern(r),
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if r.Header.Get(IdempotencyKeyHeader) != "" {
				ctx = logg.WithField(ctx, "idempotent_replay", ww.Header().Get(ReplayedHeader) == "true")
			}

			switch {
			case status >= http.StatusInternalServerError:
				logg.Warn(ctx, "booking request failed")
			case r.URL.Path == "/health/live" || r.URL.Path == "/health/ready" || r.URL.Path == "/metrics":
				logg.Debug(ctx, "probe served")
			default:
				logg.Info(ctx, "booking request served")
			}
		})
	}
}
