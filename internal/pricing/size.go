package pricing

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
)

var sqftSuffix = regexp.MustCompile(`(?i)\s*(sq\.?\s*ft\.?|sqft|square\s+feet|ft2)$`)

// maxSqft caps parsed square footage so oversized input stays above every
// tier bound and contact-for-price threshold instead of wrapping.
var maxSqft = decimal.NewFromInt(math.MaxInt32)

// PropertySize is free-text size input interpreted either as square footage or
// as a tier code.
type PropertySize struct {
	Raw  string
	Sqft *int
	Code string
}

// ParsePropertySize accepts "2400", "2,400 sq ft", "2400sqft" or a tier code
// such as "medium". Blank input yields an empty PropertySize.
func ParsePropertySize(raw string) PropertySize {
	trimmed := strings.TrimSpace(raw)
	size := PropertySize{Raw: trimmed}
	if trimmed == "" {
		return size
	}

	numeric := sqftSuffix.ReplaceAllString(trimmed, "")
	numeric = strings.ReplaceAll(numeric, ",", "")
	numeric = strings.ReplaceAll(numeric, " ", "")
	if d, err := decimal.NewFromString(numeric); err == nil && !d.IsNegative() {
		if d.GreaterThan(maxSqft) {
			d = maxSqft
		}
		n := int(d.IntPart())
		size.Sqft = &n
		return size
	}

	size.Code = strings.ToLower(trimmed)
	return size
}

func (p PropertySize) IsZero() bool {
	return p.Raw == ""
}

// ResolveTier maps the size onto the first tier whose bounds contain it, or
// whose code matches. ok is false when nothing matches.
func ResolveTier(size PropertySize, tiers []catalog.SizeTier) (catalog.SizeTier, bool) {
	if size.IsZero() {
		return catalog.SizeTier{}, false
	}
	for _, tier := range tiers {
		if size.Sqft != nil {
			if tier.Contains(*size.Sqft) {
				return tier, true
			}
			continue
		}
		if strings.EqualFold(tier.Code, size.Code) {
			return tier, true
		}
	}
	return catalog.SizeTier{}, false
}

// SizeAdjustedPrice scales basePrice by the matched tier's multiplier and
// rounds to whole units. Without a matching tier the multiplier is 1.0.
func SizeAdjustedPrice(basePrice decimal.Decimal, propertySize string, tiers []catalog.SizeTier) decimal.Decimal {
	tier, ok := ResolveTier(ParsePropertySize(propertySize), tiers)
	if !ok {
		return roundUnits(basePrice)
	}
	return roundUnits(basePrice.Mul(tier.Multiplier))
}

// resolvedSqft is the square footage used for the contact-for-price threshold:
// the number itself, or the minimum of the tier named by code.
func resolvedSqft(size PropertySize, tiers []catalog.SizeTier) (int, bool) {
	if size.Sqft != nil {
		return *size.Sqft, true
	}
	if tier, ok := ResolveTier(size, tiers); ok {
		return tier.MinSqft, true
	}
	return 0, false
}

func roundUnits(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}
