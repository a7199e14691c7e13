package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
)

const submitPath = "/api/v1/booking/session/submit"

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func keyedRequest(method, path, key, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	handlerCalled := false
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, keyedRequest(http.MethodPost, submitPath, "", `{"name":"Jordan"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, handlerCalled, "handler should not run without idempotency key")
}

func TestIdempotencyIgnoresUnlistedRoutes(t *testing.T) {
	calls := 0
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/v1/booking/session/mutations", "", `{}`))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, keyedRequest(http.MethodPost, submitPath+"/", "abc", `{"name":"Jordan"}`))
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(ReplayedHeader))

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, keyedRequest(http.MethodPost, submitPath, "abc", `{"name":"Jordan"}`))

	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(ReplayedHeader))
	assert.JSONEq(t, `{"ok":true}`, replay.Body.String())
	assert.Equal(t, 1, calls)
	for _, ttl := range store.ttls {
		assert.Equal(t, submitTTL, ttl)
	}
}

func TestIdempotencyReplayKeepsSessionHeader(t *testing.T) {
	calls := 0
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set(SessionHeader, fmt.Sprintf("token-%d", calls))
		w.WriteHeader(http.StatusCreated)
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/v1/booking/sessions", "start-1", `{"service_line":"listing"}`))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "token-1", rec.Header().Get(SessionHeader))
	}
	assert.Equal(t, 1, calls)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	statuses := []int{http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusCreated}
	calls := 0
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statuses[calls])
		calls++
	}))

	for _, want := range statuses {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, keyedRequest(http.MethodPost, submitPath, "retry", `{"name":"Jordan"}`))
		assert.Equal(t, want, rec.Code)
	}
	assert.Equal(t, 3, calls)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, keyedRequest(http.MethodPost, submitPath, "retry", `{"name":"Jordan"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, calls, "a stored success must be replayed")
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, submitPath, "xyz", `{"name":"Jordan"}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, keyedRequest(http.MethodPost, submitPath, "xyz", `{"name":"Sam"}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
}

func TestIdempotencyScopesBySession(t *testing.T) {
	calls := 0
	handler := Idempotency(newFakeStore(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, sid := range []string{"sess-a", "sess-b"} {
		req := keyedRequest(http.MethodPost, submitPath, "same-key", `{"name":"Jordan"}`)
		req = req.WithContext(WithSessionID(req.Context(), sid))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls, "different sessions must not share a key")
}
