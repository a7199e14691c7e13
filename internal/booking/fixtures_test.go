package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/internal/submission"
	"github.com/snapnest/booking-backend/pkg/config"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func listingSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		ServiceLine: catalog.ServiceLine{Code: "listing", Name: "Listing Photography", RequiresAddress: true, AllowsAddonsOnly: true},
		Packages: []catalog.Package{
			{ID: "essentials", Name: "Essentials", BasePrice: dec("229")},
			{ID: "signature", Name: "Signature", BasePrice: dec("429"), BundledAddonIDs: []string{"drone"}},
		},
		AddOns: []catalog.AddOn{
			{ID: "drone", Name: "Drone Aerials", BasePrice: dec("149")},
			{ID: "virtual-staging", Name: "Virtual Staging", BasePrice: dec("12"), QuantityScaled: true},
		},
		PartnerCodes: []catalog.PartnerCode{
			{Code: "REALTY10", PackageDiscountPercent: decPtr("10")},
		},
		SizeTiers: []catalog.SizeTier{
			{Code: "small", Multiplier: dec("1"), MinSqft: 0, MaxSqft: intPtr(1499)},
			{Code: "medium", Multiplier: dec("1.15"), MinSqft: 1500, MaxSqft: intPtr(4999)},
			{Code: "estate", Multiplier: dec("1.5"), MinSqft: 5000},
		},
	}
}

type memoryBackend struct {
	mu     sync.Mutex
	values  map[string]string
	touched map[string]time.Duration
	setErr  error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: map[string]string{}, touched: map[string]time.Duration{}}
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.setErr != nil {
		return b.setErr
	}
	b.values[key] = fmt.Sprint(value)
	return nil
}

func (b *memoryBackend) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.values[key]; ok {
		return false, nil
	}
	b.values[key] = fmt.Sprint(value)
	return true, nil
}

func (b *memoryBackend) Del(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		delete(b.values, key)
	}
	return nil
}

func (b *memoryBackend) Touch(_ context.Context, key string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.values[key]; ok {
		b.touched[key] = ttl
	}
	return nil
}

func (b *memoryBackend) ReleaseIfOwner(_ context.Context, key, owner string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.values[key] != owner {
		return false, nil
	}
	delete(b.values, key)
	return true, nil
}

func (b *memoryBackend) SessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (b *memoryBackend) SessionLockKey(sessionID string) string {
	return "session-lock:" + sessionID
}

func (b *memoryBackend) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.values[key]
	return ok
}

type stubProvider struct {
	snap *catalog.Snapshot
}

func (p *stubProvider) ServiceLines(context.Context) ([]catalog.ServiceLine, error) {
	return []catalog.ServiceLine{p.snap.ServiceLine}, nil
}

func (p *stubProvider) Snapshot(_ context.Context, line string) (*catalog.Snapshot, error) {
	if line != p.snap.ServiceLine.Code {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("service line %q not found", line))
	}
	return p.snap, nil
}

type stubSubmitter struct {
	inputs []submission.Input
	err    error
}

func (s *stubSubmitter) Submit(_ context.Context, in submission.Input) (*submission.Result, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	return &submission.Result{}, nil
}

type harness struct {
	svc       Service
	backend   *memoryBackend
	provider  *stubProvider
	submitter *stubSubmitter
	session   config.SessionConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithLimits(t, selection.Limits{QuantityMin: 1, QuantityMax: 20})
}

func newHarnessWithLimits(t *testing.T, limits selection.Limits) *harness {
	t.Helper()

	engine, err := pricing.NewEngine(
		pricing.Config{TaxRate: dec("0.13"), ContactForPriceSqft: 5000},
		pricing.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	h := &harness{
		backend:   newMemoryBackend(),
		provider:  &stubProvider{snap: listingSnapshot()},
		submitter: &stubSubmitter{},
		session:   config.SessionConfig{Secret: "secret", Issuer: "booking-api", TTL: time.Hour, StateTTL: time.Hour},
	}
	h.svc, err = NewService(ServiceParams{
		Catalog:    h.provider,
		Engine:     engine,
		Submission: h.submitter,
		Backend:    h.backend,
		Session:    h.session,
		Limits:     limits,
		Logger:     logger.Nop(),
	})
	require.NoError(t, err)
	return h
}

func (h *harness) mutate(t *testing.T, sid string, m Mutation) *View {
	t.Helper()
	view, err := h.svc.Mutate(context.Background(), sid, m)
	require.NoError(t, err, "mutation %s", m.Kind)
	return view
}

// readySession walks a listing session to the contact step with the
// signature package, four virtual staging photos and REALTY10 applied.
func (h *harness) readySession(t *testing.T) string {
	t.Helper()
	started, err := h.svc.Start(context.Background(), "listing")
	require.NoError(t, err)
	sid := started.View.SessionID

	h.mutate(t, sid, Mutation{Kind: MutationEditProperty, Property: &selection.PropertyDetails{Address: "12 Elm St", Size: "2000"}})
	h.mutate(t, sid, Mutation{Kind: MutationAdvance})
	h.mutate(t, sid, Mutation{Kind: MutationSelectPackage, PackageID: "signature"})
	h.mutate(t, sid, Mutation{Kind: MutationAdvance})
	h.mutate(t, sid, Mutation{Kind: MutationToggleAddon, AddonID: catalog.VariantID("virtual-staging", 4)})
	h.mutate(t, sid, Mutation{Kind: MutationApplyPartnerCode, PartnerCode: "realty10"})
	h.mutate(t, sid, Mutation{Kind: MutationAdvance})
	return sid
}
