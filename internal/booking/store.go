package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapnest/booking-backend/internal/selection"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

// State is what a booking session keeps between requests.
type State struct {
	SessionID string               `json:"session_id"`
	Selection *selection.Selection `json:"selection"`
	Version   int64                `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type stateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	SessionKey(sessionID string) string
}

// sessionStore keeps session state in redis with a sliding TTL.
type sessionStore struct {
	client stateStore
	ttl    time.Duration
}

// Load reads a session and slides its TTL, so reads keep an idle session alive.
func (s *sessionStore) Load(ctx context.Context, sessionID string) (*State, error) {
	key := s.client.SessionKey(sessionID)
	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking session expired or unknown")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking session")
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode booking session")
	}
	if state.Selection == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("booking session %s has no selection", sessionID))
	}
	if err := s.client.Touch(ctx, key, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh booking session")
	}
	return &state, nil
}

func (s *sessionStore) Save(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode booking session")
	}
	if err := s.client.Set(ctx, s.client.SessionKey(state.SessionID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking session")
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.SessionKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking session")
	}
	return nil
}
