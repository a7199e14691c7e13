package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
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

func boolPtr(v bool) *bool {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func listingTiers() []catalog.SizeTier {
	return []catalog.SizeTier{
		{Code: "small", Multiplier: dec("1"), MinSqft: 0, MaxSqft: intPtr(1499)},
		{Code: "medium", Multiplier: dec("1.15"), MinSqft: 1500, MaxSqft: intPtr(2999)},
		{Code: "large", Multiplier: dec("1.3"), MinSqft: 3000, MaxSqft: intPtr(4999)},
		{Code: "estate", Multiplier: dec("1.5"), MinSqft: 5000},
	}
}

func listingSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		ServiceLine: catalog.ServiceLine{Code: "listing", Name: "Listing Photography", RequiresAddress: true, AllowsAddonsOnly: true},
		Packages: []catalog.Package{
			{ID: "essentials", Name: "Essentials", BasePrice: dec("229")},
			{ID: "signature", Name: "Signature", BasePrice: dec("429"), BundledAddonIDs: []string{"drone", "floor-plan"}},
		},
		AddOns: []catalog.AddOn{
			{ID: "drone", Name: "Drone Aerials", BasePrice: dec("149"), PriceWithPackage: decPtr("129"), PriceWithoutPackage: decPtr("179")},
			{ID: "floor-plan", Name: "Floor Plan", BasePrice: dec("99")},
			{ID: "virtual-staging", Name: "Virtual Staging", BasePrice: dec("12"), QuantityScaled: true, UnitLabel: "photo"},
		},
		PartnerCodes: []catalog.PartnerCode{
			{Code: "REALTY10", Active: boolPtr(true), PackageDiscountPercent: decPtr("10")},
			{Code: "BROKER15", PackageDiscountPercent: decPtr("15"), AddonDiscountPercent: decPtr("5"),
				ValidFrom: timePtr(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), ValidUntil: timePtr(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC))},
			{Code: "RETIRED", Active: boolPtr(false), PackageDiscountPercent: decPtr("50")},
		},
		SizeTiers: listingTiers(),
	}
}

func newTestEngine(strict bool) *Engine {
	e, err := NewEngine(Config{TaxRate: dec("0.13"), ContactForPriceSqft: 5000, Strict: strict}, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		panic(err)
	}
	return e
}
