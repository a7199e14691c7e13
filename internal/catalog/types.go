package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceLine describes how a business line's booking flow behaves.
type ServiceLine struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	RequiresAddress  bool   `json:"requires_address"`
	AllowsAddonsOnly bool   `json:"allows_addons_only"`
}

// Package is an offering tier. BundledAddonIDs are included in the package and
// are never separately purchasable while it is selected.
type Package struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	BasePrice        decimal.Decimal `json:"base_price"`
	IncludedServices []string        `json:"included_services"`
	Popular          bool            `json:"popular"`
	BundledAddonIDs  []string        `json:"bundled_addon_ids"`
}

// Bundles reports whether addonID is included in the package.
func (p Package) Bundles(addonID string) bool {
	for _, id := range p.BundledAddonIDs {
		if id == addonID {
			return true
		}
	}
	return false
}

// AddOn is an optional extra. A nil context price falls back to BasePrice.
// For quantity-scaled add-ons every price is a per-unit price.
type AddOn struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	BasePrice           decimal.Decimal  `json:"base_price"`
	PriceWithPackage    *decimal.Decimal `json:"price_with_package,omitempty"`
	PriceWithoutPackage *decimal.Decimal `json:"price_without_package,omitempty"`
	QuantityScaled      bool             `json:"quantity_scaled"`
	UnitLabel           string           `json:"unit_label,omitempty"`
}

// UnitPrice returns the context price for the add-on.
func (a AddOn) UnitPrice(hasPackage bool) decimal.Decimal {
	if hasPackage && a.PriceWithPackage != nil {
		return *a.PriceWithPackage
	}
	if !hasPackage && a.PriceWithoutPackage != nil {
		return *a.PriceWithoutPackage
	}
	return a.BasePrice
}

// PartnerCode is a referral code with independent package and add-on discounts.
// A nil Active means the flag was never set, which counts as active.
type PartnerCode struct {
	Code                   string           `json:"code"`
	PartnerName            string           `json:"partner_name,omitempty"`
	Active                 *bool            `json:"active,omitempty"`
	ValidFrom              *time.Time       `json:"valid_from,omitempty"`
	ValidUntil             *time.Time       `json:"valid_until,omitempty"`
	PackageDiscountPercent *decimal.Decimal `json:"package_discount_percent,omitempty"`
	AddonDiscountPercent   *decimal.Decimal `json:"addon_discount_percent,omitempty"`
}

// SizeTier is a square-footage band. MinSqft is inclusive, MaxSqft is inclusive
// when set and open-ended when nil.
type SizeTier struct {
	Code       string          `json:"code"`
	Label      string          `json:"label,omitempty"`
	Multiplier decimal.Decimal `json:"multiplier"`
	MinSqft    int             `json:"min_sqft"`
	MaxSqft    *int            `json:"max_sqft,omitempty"`
}

// Contains reports whether sqft falls inside the tier bounds.
func (t SizeTier) Contains(sqft int) bool {
	if sqft < t.MinSqft {
		return false
	}
	return t.MaxSqft == nil || sqft <= *t.MaxSqft
}
