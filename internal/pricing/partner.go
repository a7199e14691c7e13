package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// IsPartnerCodeValid reports whether input resolves to rec, rec is not
// explicitly inactive, and now is inside the optional validity window.
// Bounds are inclusive.
func IsPartnerCodeValid(input string, rec *catalog.PartnerCode, now time.Time) bool {
	if rec == nil {
		return false
	}
	input = strings.TrimSpace(input)
	if input == "" || !strings.EqualFold(input, strings.TrimSpace(rec.Code)) {
		return false
	}
	if rec.Active != nil && !*rec.Active {
		return false
	}
	if rec.ValidFrom != nil && now.Before(*rec.ValidFrom) {
		return false
	}
	if rec.ValidUntil != nil && now.After(*rec.ValidUntil) {
		return false
	}
	return true
}

// applyDiscount returns round(price × (1 - percent/100)). A nil or non-positive
// percent means no discount; percents above 100 are clamped to 100.
func applyDiscount(price decimal.Decimal, percent *decimal.Decimal) (decimal.Decimal, bool) {
	if percent == nil || !percent.IsPositive() {
		return price, false
	}
	p := *percent
	if p.GreaterThan(hundred) {
		p = hundred
	}
	factor := decimal.NewFromInt(1).Sub(p.Div(hundred))
	return roundUnits(price.Mul(factor)), true
}
