package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/snapnest/booking-backend/api/responses"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
)

type windowCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy caps requests per client IP on one route. Per-email limits
// live in the submission service, which has the parsed contact.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int64
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "booking"
	}
	return RateLimitPolicy{name: name, window: window, limit: int64(ipLimit)}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) scope(ip string) string {
	return "ip:" + p.name + ":" + ip
}

// retryAfter is the worst-case wait in whole seconds.
func (p RateLimitPolicy) retryAfter() string {
	return strconv.Itoa(max(int(p.window.Seconds()), 1))
}

// RateLimit rejects a client IP once it exceeds the policy inside the window.
// Counter failures fail open so a redis hiccup never blocks a booking.
func RateLimit(policy RateLimitPolicy, counter windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || counter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logg.WithFields(r.Context(), map[string]any{"policy": policy.name, "ip": ip})
			allowed, attempts, err := counter.FixedWindowAllow(ctx, policy.scope(ip), policy.limit, policy.window)
			switch {
			case err != nil:
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate limit counter unavailable")
			case !allowed:
				logg.Warn(logg.WithField(ctx, "attempts", attempts), "rate limit exceeded")
				w.Header().Set("Retry-After", policy.retryAfter())
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many booking attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first forwarded hop, then X-Real-IP, then the peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
