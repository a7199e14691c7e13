package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapnest/booking-backend/api/responses"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
	pkgredis "github.com/snapnest/booking-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	sessionStartTTL = 24 * time.Hour
	submitTTL       = 72 * time.Hour
)

// idempotentRoutes maps "METHOD path" to how long a stored response is replayed.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/booking/sessions":      sessionStartTTL,
	http.MethodPost + " /api/v1/booking/session/submit": submitTTL,
}

// replayHeaders are copied into the stored record. The session header must
// survive so a replayed start hands back the same session.
var replayHeaders = []string{"Content-Type", SessionHeader}

type storedResponse struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a retried request carries the
// same Idempotency-Key and body. Server failures and rate limits are not
// stored, so a retry after either runs the handler again.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotentRoutes[r.Method+" "+strings.TrimSuffix(r.URL.Path, "/")]
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			requestHash := base64.StdEncoding.EncodeToString(sum[:])
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			prior, err := lookupResponse(ctx, store, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if prior != nil {
				if prior.RequestHash != requestHash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				if logg != nil {
					logg.Debug(logg.WithField(ctx, "idempotency_key", clientKey), "idempotency.replay")
				}
				prior.replay(w)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusCode()
			if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
				return
			}
			record := storedResponse{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				RequestHash: requestHash,
			}
			for _, name := range replayHeaders {
				if v := capture.Header().Get(name); v != "" {
					if record.Headers == nil {
						record.Headers = map[string]string{}
					}
					record.Headers[name] = v
				}
			}
			persistResponse(ctx, store, logg, key, record, ttl)
		})
	}
}

// idempotencyScope keeps keys from colliding across sessions and clients.
// Session start has no session yet, so it is scoped by client IP alone.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{
		SessionIDFromContext(r.Context()),
		ClientIP(r),
		r.Method,
		strings.TrimSuffix(r.URL.Path, "/"),
	}, "|")
}

func lookupResponse(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*storedResponse, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var record storedResponse
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &record, nil
}

func persistResponse(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, key string, record storedResponse, ttl time.Duration) {
	payload, err := json.Marshal(record)
	if err == nil {
		// First writer wins when two retries race past the lookup.
		_, err = store.SetNX(context.WithoutCancel(ctx), key, string(payload), ttl)
	}
	if err != nil && logg != nil {
		logg.Error(ctx, "idempotency.persist_failed", err)
	}
}

func (s *storedResponse) replay(w http.ResponseWriter) {
	for name, v := range s.Headers {
		w.Header().Set(name, v)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(s.Status)
	if decoded, err := base64.StdEncoding.DecodeString(s.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
