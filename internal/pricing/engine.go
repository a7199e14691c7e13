package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
)

// PackagePrice prices a package: size adjustment first, then the partner
// package discount on the already adjusted price. The discount is applied at
// most once and only when a package id is given and the code is valid.
func PackagePrice(
	basePrice decimal.Decimal,
	propertySize string,
	packageID string,
	partnerInput string,
	rec *catalog.PartnerCode,
	tiers []catalog.SizeTier,
	now time.Time,
) (price decimal.Decimal, isDiscounted bool) {
	adjusted := SizeAdjustedPrice(basePrice, propertySize, tiers)
	if packageID == "" || !IsPartnerCodeValid(partnerInput, rec, now) {
		return adjusted, false
	}
	return applyDiscount(adjusted, rec.PackageDiscountPercent)
}

// AddonPrice prices one add-on line. The unit price depends on whether a
// package is selected; quantity-scaled add-ons multiply by quantity (minimum 1)
// before the partner add-on discount is applied.
func AddonPrice(
	addon catalog.AddOn,
	hasPackageSelected bool,
	quantity int,
	partnerInput string,
	rec *catalog.PartnerCode,
	now time.Time,
) (price decimal.Decimal, isDiscounted bool) {
	price = addon.UnitPrice(hasPackageSelected)
	if addon.QuantityScaled {
		if quantity < 1 {
			quantity = 1
		}
		price = price.Mul(decimal.NewFromInt(int64(quantity)))
	}
	price = roundUnits(price)
	if !IsPartnerCodeValid(partnerInput, rec, now) {
		return price, false
	}
	return applyDiscount(price, rec.AddonDiscountPercent)
}

// Config holds the non-catalog pricing constants.
type Config struct {
	TaxRate decimal.Decimal
	// ContactForPriceSqft is the size at or above which package prices become
	// the contact-for-price sentinel. Zero disables the override.
	ContactForPriceSqft int
	// Strict turns PRICING_INCONSISTENCY errors into panics.
	Strict bool
}

// Engine combines the pure pricing rules into quotes.
type Engine struct {
	cfg Config
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used for partner code validity windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be within [0, 1), got %s", cfg.TaxRate)
	}
	if cfg.ContactForPriceSqft < 0 {
		return nil, fmt.Errorf("contact-for-price threshold must not be negative")
	}
	e := &Engine{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) TaxRate() decimal.Decimal {
	return e.cfg.TaxRate
}

// IsContactForPrice reports whether the property size crosses the configured threshold.
func (e *Engine) IsContactForPrice(propertySize string, tiers []catalog.SizeTier) bool {
	if e.cfg.ContactForPriceSqft <= 0 {
		return false
	}
	sqft, ok := resolvedSqft(ParsePropertySize(propertySize), tiers)
	return ok && sqft >= e.cfg.ContactForPriceSqft
}

// PackageAmount prices pkg for display. The numeric price is always computed;
// the returned Amount is the sentinel when the size crosses the threshold.
func (e *Engine) PackageAmount(pkg catalog.Package, propertySize, partnerInput string, snap *catalog.Snapshot) (amount Amount, computed decimal.Decimal, discounted bool) {
	computed, discounted = PackagePrice(pkg.BasePrice, propertySize, pkg.ID, partnerInput, snap.PartnerCode(partnerInput), snap.SizeTiers, e.now())
	if e.IsContactForPrice(propertySize, snap.SizeTiers) {
		return ContactForPrice(), computed, discounted
	}
	return Price(computed), computed, discounted
}

// Sum adds numeric amounts. Any sentinel yields PRICING_INCONSISTENCY, which
// panics in strict mode.
func (e *Engine) Sum(amounts ...Amount) (Amount, error) {
	total := Amount{}
	for _, a := range amounts {
		next, err := total.Add(a)
		if err != nil {
			if e.cfg.Strict {
				panic(err)
			}
			return Amount{}, err
		}
		total = next
	}
	return total, nil
}

// Tax returns round(subtotal × taxRate). The sentinel has no tax.
func (e *Engine) Tax(subtotal Amount) Amount {
	v, ok := subtotal.Value()
	if !ok {
		return ContactForPrice()
	}
	return Price(v.Mul(e.cfg.TaxRate))
}
