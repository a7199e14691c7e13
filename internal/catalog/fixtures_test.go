package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

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

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		ServiceLine: ServiceLine{Code: "listing", Name: "Listing Photography", RequiresAddress: true, AllowsAddonsOnly: true},
		Packages: []Package{
			{ID: "essentials", Name: "Essentials", BasePrice: dec("229")},
			{ID: "signature", Name: "Signature", BasePrice: dec("429"), Popular: true, BundledAddonIDs: []string{"drone", "floor-plan"}},
		},
		AddOns: []AddOn{
			{ID: "drone", Name: "Drone Aerials", BasePrice: dec("149"), PriceWithPackage: decPtr("129"), PriceWithoutPackage: decPtr("179")},
			{ID: "floor-plan", Name: "Floor Plan", BasePrice: dec("99")},
			{ID: "virtual-staging", Name: "Virtual Staging", BasePrice: dec("12"), QuantityScaled: true, UnitLabel: "photo"},
		},
		PartnerCodes: []PartnerCode{
			{Code: "REALTY10", Active: boolPtr(true), PackageDiscountPercent: decPtr("10")},
		},
		SizeTiers: []SizeTier{
			{Code: "small", Multiplier: dec("1"), MinSqft: 0, MaxSqft: intPtr(1499)},
			{Code: "medium", Multiplier: dec("1.15"), MinSqft: 1500, MaxSqft: intPtr(2999)},
			{Code: "estate", Multiplier: dec("1.5"), MinSqft: 5000},
		},
		LoadedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}
