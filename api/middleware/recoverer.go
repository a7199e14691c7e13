package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snapnest/booking-backend/api/responses"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. Aborted handlers keep
// propagating so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				ctx := logg.WithFields(r.Context(), map[string]any{
					"panic":  fmt.Sprint(rec),
					"method": r.Method,
					"route":  routePattern(r),
				})
				if id := SessionIDFromContext(r.Context()); id != "" {
					ctx = logg.WithSessionID(ctx, id)
				}
				err := fmt.Errorf("handler panic: %v", rec)
				logg.Error(ctx, "request panicked", err)
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected failure"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// routePattern reports the matched chi pattern, or the raw path before routing
// has resolved one.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
