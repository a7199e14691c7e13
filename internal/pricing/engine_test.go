package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

func TestNewEngineValidatesConfig(t *testing.T) {
	t.Parallel()
	_, err := NewEngine(Config{TaxRate: dec("1")})
	assert.Error(t, err)
	_, err = NewEngine(Config{TaxRate: dec("-0.1")})
	assert.Error(t, err)
	_, err = NewEngine(Config{TaxRate: dec("0.13"), ContactForPriceSqft: -1})
	assert.Error(t, err)
	_, err = NewEngine(Config{TaxRate: dec("0.13")})
	assert.NoError(t, err)
}

func TestPackagePriceDiscountAppliesAfterSize(t *testing.T) {
	t.Parallel()
	snap := listingSnapshot()
	rec := snap.PartnerCode("REALTY10")

	price, discounted := PackagePrice(dec("429"), "2000", "signature", "", nil, snap.SizeTiers, fixedNow)
	assert.False(t, discounted)
	assert.Equal(t, "493", price.String())

	price, discounted = PackagePrice(dec("429"), "2000", "signature", "realty10", rec, snap.SizeTiers, fixedNow)
	assert.True(t, discounted)
	assert.Equal(t, "444", price.String())

	price, discounted = PackagePrice(dec("429"), "2000", "", "REALTY10", rec, snap.SizeTiers, fixedNow)
	assert.False(t, discounted)
	assert.Equal(t, "493", price.String())
}

func TestPackagePriceDiscountProperty(t *testing.T) {
	t.Parallel()
	tiers := listingTiers()
	for _, pct := range []string{"5", "10", "12.5", "33", "100"} {
		rec := listingSnapshot().PartnerCode("REALTY10")
		rec.PackageDiscountPercent = decPtr(pct)
		for _, size := range []string{"", "900", "2200", "4100"} {
			adjusted := SizeAdjustedPrice(dec("429"), size, tiers)
			want := adjusted.Mul(dec("1").Sub(dec(pct).Div(dec("100")))).Round(0)

			with, _ := PackagePrice(dec("429"), size, "signature", "REALTY10", rec, tiers, fixedNow)
			without, _ := PackagePrice(dec("429"), size, "signature", "", rec, tiers, fixedNow)
			assert.True(t, with.Equal(want), "pct %s size %q: got %s want %s", pct, size, with, want)
			assert.True(t, with.LessThanOrEqual(without))
		}
	}
}

func TestInvalidCodesNeverDiscount(t *testing.T) {
	t.Parallel()
	snap := listingSnapshot()
	retired := snap.PartnerCode("RETIRED")

	price, discounted := PackagePrice(dec("429"), "", "signature", "RETIRED", retired, snap.SizeTiers, fixedNow)
	assert.False(t, discounted)
	assert.Equal(t, "429", price.String())

	broker := snap.PartnerCode("BROKER15")
	later := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	price, discounted = PackagePrice(dec("429"), "", "signature", "BROKER15", broker, snap.SizeTiers, later)
	assert.False(t, discounted)
	assert.Equal(t, "429", price.String())
}

func TestAddonPrice(t *testing.T) {
	t.Parallel()
	snap := listingSnapshot()
	drone, _ := snap.AddOn("drone")
	staging, _ := snap.AddOn("virtual-staging")
	floorPlan, _ := snap.AddOn("floor-plan")
	broker := snap.PartnerCode("BROKER15")

	price, _ := AddonPrice(drone, true, 0, "", nil, fixedNow)
	assert.Equal(t, "129", price.String())
	price, _ = AddonPrice(drone, false, 0, "", nil, fixedNow)
	assert.Equal(t, "179", price.String())
	price, _ = AddonPrice(floorPlan, true, 7, "", nil, fixedNow)
	assert.Equal(t, "99", price.String(), "quantity is ignored for flat add-ons")

	price, _ = AddonPrice(staging, true, 4, "", nil, fixedNow)
	assert.Equal(t, "48", price.String())
	price, _ = AddonPrice(staging, true, 0, "", nil, fixedNow)
	assert.Equal(t, "12", price.String())

	price, discounted := AddonPrice(staging, true, 4, "BROKER15", broker, fixedNow)
	assert.True(t, discounted)
	assert.Equal(t, "46", price.String())

	price, discounted = AddonPrice(staging, true, 4, "REALTY10", snap.PartnerCode("REALTY10"), fixedNow)
	assert.False(t, discounted, "package-only code leaves add-ons alone")
	assert.Equal(t, "48", price.String())
}

func TestQuoteListingExample(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(false)

	q, err := engine.Quote(listingSnapshot(), QuoteInput{
		PackageID:    "signature",
		Addons:       []AddonInput{{AddonID: "virtual-staging", Quantity: 4}},
		PropertySize: "2000",
		PartnerCode:  "realty10",
	})
	require.NoError(t, err)

	require.NotNil(t, q.PackagePrice)
	assert.Equal(t, "444", q.PackagePrice.String())
	assert.True(t, q.PackageDiscounted)
	assert.Equal(t, "medium", q.SizeTier)
	assert.Equal(t, "REALTY10", q.PartnerCode)
	require.Len(t, q.AddonLines, 1)
	assert.Equal(t, "virtual-staging-4", q.AddonLines[0].ID)
	assert.Equal(t, "48", q.AddonLines[0].Price.String())
	assert.Equal(t, "492", q.Subtotal.String())
	assert.Equal(t, "64", q.Tax.String())
	assert.Equal(t, "556", q.Total.String())
	assert.Equal(t, "$556", q.Total.Display())
	assert.Equal(t, []string{"virtual-staging-4"}, q.AddonIDs())

	sum, err := q.Subtotal.Add(q.Tax)
	require.NoError(t, err)
	assert.True(t, sum.Equal(q.Total))
}

func TestQuoteContactForPrice(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(false)

	for _, size := range []string{"6000", "5000", "estate", "18446744073709551616", "9223372036854775808"} {
		q, err := engine.Quote(listingSnapshot(), QuoteInput{
			PackageID:    "signature",
			Addons:       []AddonInput{{AddonID: "virtual-staging", Quantity: 2}},
			PropertySize: size,
			PartnerCode:  "REALTY10",
		})
		require.NoError(t, err, size)
		assert.True(t, q.ContactForPrice, size)
		assert.True(t, q.PackagePrice.IsContactForPrice())
		assert.True(t, q.Total.IsContactForPrice())
		assert.Equal(t, "Contact for Price", q.Total.Display())
		require.NotNil(t, q.ComputedPackagePrice)
		assert.True(t, q.ComputedPackagePrice.IsPositive())
	}

	q, err := engine.Quote(listingSnapshot(), QuoteInput{PackageID: "signature", PropertySize: "4999"})
	require.NoError(t, err)
	assert.False(t, q.ContactForPrice)
	assert.Equal(t, "558", q.PackagePrice.String())
}

func TestQuoteContactForPriceDisabled(t *testing.T) {
	t.Parallel()
	engine, err := NewEngine(Config{TaxRate: dec("0.13")})
	require.NoError(t, err)

	q, err := engine.Quote(listingSnapshot(), QuoteInput{PackageID: "signature", PropertySize: "8000"})
	require.NoError(t, err)
	assert.False(t, q.ContactForPrice)
	assert.Equal(t, "644", q.PackagePrice.String())
}

func TestQuoteAddonsOnly(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(false)

	q, err := engine.Quote(listingSnapshot(), QuoteInput{
		Addons:       []AddonInput{{AddonID: "drone"}, {AddonID: "floor-plan"}},
		PropertySize: "9000",
	})
	require.NoError(t, err)
	assert.Nil(t, q.PackagePrice)
	assert.False(t, q.ContactForPrice)
	assert.Equal(t, "278", q.Subtotal.String())
	assert.Equal(t, "36", q.Tax.String())
	assert.Equal(t, "314", q.Total.String())
}

func TestQuoteEmptySelectionIsZero(t *testing.T) {
	t.Parallel()
	q, err := newTestEngine(false).Quote(listingSnapshot(), QuoteInput{})
	require.NoError(t, err)
	assert.Equal(t, "0", q.Total.String())
	assert.Empty(t, q.AddonLines)
}

func TestQuoteRejectsInconsistentInput(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(false)
	cases := map[string]QuoteInput{
		"unknown package":  {PackageID: "gold"},
		"unknown addon":    {Addons: []AddonInput{{AddonID: "hovercraft"}}},
		"bundled addon":    {PackageID: "signature", Addons: []AddonInput{{AddonID: "drone"}}},
		"duplicate family": {Addons: []AddonInput{{AddonID: "virtual-staging", Quantity: 2}, {AddonID: "virtual-staging", Quantity: 3}}},
		"missing quantity": {Addons: []AddonInput{{AddonID: "virtual-staging"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.Quote(listingSnapshot(), in)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	_, err := engine.Quote(nil, QuoteInput{})
	assert.Error(t, err)
}

func TestSumThroughSentinel(t *testing.T) {
	t.Parallel()
	_, err := newTestEngine(false).Sum(Price(dec("10")), ContactForPrice())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePricingInconsistency))

	assert.Panics(t, func() {
		_, _ = newTestEngine(true).Sum(Price(dec("10")), ContactForPrice())
	})
}

func TestTaxProperty(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(false)
	for _, v := range []string{"0", "1", "7", "99", "492", "1234", "99999"} {
		subtotal := Price(dec(v))
		tax := engine.Tax(subtotal)
		total, err := engine.Sum(subtotal, tax)
		require.NoError(t, err)

		want := dec(v).Mul(dec("0.13")).Round(0)
		got, _ := tax.Value()
		assert.True(t, got.Equal(want), "subtotal %s", v)
		tv, _ := total.Value()
		assert.True(t, tv.Equal(dec(v).Add(want)))
	}
	assert.True(t, engine.Tax(ContactForPrice()).IsContactForPrice())
}
