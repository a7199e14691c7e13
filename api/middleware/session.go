package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/snapnest/booking-backend/api/responses"
	"github.com/snapnest/booking-backend/pkg/config"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/sessiontoken"
)

// SessionHeader carries the signed booking session handle.
const SessionHeader = "X-Booking-Session"

// BookingSession validates the session handle and seeds the request context
// with the session id and service line.
func BookingSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(SessionHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing booking session"))
				return
			}

			claims, err := sessiontoken.Parse(cfg, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid booking session"))
				return
			}

			ctx := withSession(r.Context(), sessionScope{id: claims.SessionID, serviceLine: claims.ServiceLine})
			ctx = logg.WithSessionID(ctx, claims.SessionID)
			ctx = logg.WithServiceLine(ctx, claims.ServiceLine)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionScopeKey struct{}

// sessionScope is what a verified session handle vouches for.
type sessionScope struct {
	id          string
	serviceLine string
}

func withSession(ctx context.Context, scope sessionScope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionScopeKey{}, scope)
}

func sessionFromContext(ctx context.Context) sessionScope {
	if ctx == nil {
		return sessionScope{}
	}
	scope, _ := ctx.Value(sessionScopeKey{}).(sessionScope)
	return scope
}

// SessionIDFromContext returns the verified booking session id, or "" outside
// a session-scoped route.
func SessionIDFromContext(ctx context.Context) string {
	return sessionFromContext(ctx).id
}

func ServiceLineFromContext(ctx context.Context) string {
	return sessionFromContext(ctx).serviceLine
}

// WithSessionID scopes ctx to sessionID without a verified handle.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	scope := sessionFromContext(ctx)
	scope.id = sessionID
	return withSession(ctx, scope)
}
