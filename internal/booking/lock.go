package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Second

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
	SessionLockKey(sessionID string) string
}

// sessionLock serializes mutations of one booking session across API replicas.
type sessionLock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

func newSessionLock(client lockStore, sessionID string, ttl time.Duration) *sessionLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &sessionLock{client: client, key: client.SessionLockKey(sessionID), ttl: ttl}
}

// Acquire tries to own the lock for the configured TTL.
func (l *sessionLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *sessionLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	// An expired lock may already belong to someone else; leave it alone.
	if _, err := l.client.ReleaseIfOwner(ctx, l.key, l.owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	l.owner = ""
	return nil
}
