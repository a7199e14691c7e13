package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/metrics"
)

// Provider hands out read-only catalog snapshots.
type Provider interface {
	Snapshot(ctx context.Context, serviceLine string) (*Snapshot, error)
	ServiceLines(ctx context.Context) ([]ServiceLine, error)
}

type source interface {
	LoadSnapshot(ctx context.Context, serviceLine string) (*Snapshot, error)
	ServiceLines(ctx context.Context) ([]ServiceLine, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(serviceLine string) string
}

type cachedProvider struct {
	source  source
	cache   cacheStore
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.BookingMetrics
}

// NewCachedProvider serves snapshots from redis, falling back to the source on
// a miss or any cache failure. A nil cache disables caching.
func NewCachedProvider(src source, cache cacheStore, ttl time.Duration, logg *logger.Logger, m *metrics.BookingMetrics) (Provider, error) {
	if src == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &cachedProvider{source: src, cache: cache, ttl: ttl, logg: logg, metrics: m}, nil
}

func (p *cachedProvider) ServiceLines(ctx context.Context) ([]ServiceLine, error) {
	return p.source.ServiceLines(ctx)
}

func (p *cachedProvider) Snapshot(ctx context.Context, serviceLine string) (*Snapshot, error) {
	serviceLine = strings.TrimSpace(serviceLine)
	if snap := p.fromCache(ctx, serviceLine); snap != nil {
		p.metrics.IncCatalogCache(true)
		return snap, nil
	}
	p.metrics.IncCatalogCache(false)

	snap, err := p.source.LoadSnapshot(ctx, serviceLine)
	if err != nil {
		return nil, err
	}

	if issues := snap.Audit(); len(issues) > 0 {
		details := make([]string, 0, len(issues))
		for _, issue := range issues {
			details = append(details, issue.String())
		}
		warnCtx := p.logg.WithFields(ctx, map[string]any{
			"service_line": serviceLine,
			"issues":       details,
		})
		p.logg.Warn(warnCtx, "catalog data has pricing anomalies")
	}

	p.toCache(ctx, serviceLine, snap)
	return snap, nil
}

func (p *cachedProvider) fromCache(ctx context.Context, serviceLine string) *Snapshot {
	if p.cache == nil || p.ttl <= 0 {
		return nil
	}
	raw, err := p.cache.Get(ctx, p.cache.CatalogKey(serviceLine))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "catalog cache read failed")
		}
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "catalog cache entry unreadable")
		return nil
	}
	return &snap
}

func (p *cachedProvider) toCache(ctx context.Context, serviceLine string, snap *Snapshot) {
	if p.cache == nil || p.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "catalog snapshot not cacheable")
		return
	}
	if err := p.cache.Set(ctx, p.cache.CatalogKey(serviceLine), string(payload), p.ttl); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
}
