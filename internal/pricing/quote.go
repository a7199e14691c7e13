package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

// AddonInput is one selected add-on. Quantity is only meaningful for
// quantity-scaled add-ons.
type AddonInput struct {
	AddonID  string `json:"addon_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// QuoteInput is everything a quote depends on besides the catalog. PartnerCode
// is the applied code; drafts never reach pricing.
type QuoteInput struct {
	PackageID    string       `json:"package_id,omitempty"`
	Addons       []AddonInput `json:"addons,omitempty"`
	PropertySize string       `json:"property_size,omitempty"`
	PartnerCode  string       `json:"partner_code,omitempty"`
}

// AddonLine is one priced add-on. ID is the submission id, which carries the
// quantity suffix for quantity-scaled add-ons.
type AddonLine struct {
	ID         string `json:"id"`
	AddonID    string `json:"addon_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity,omitempty"`
	Price      Amount `json:"price"`
	Discounted bool   `json:"discounted"`
}

// Quote is the full price breakdown for a selection.
type Quote struct {
	ServiceLine       string          `json:"service_line"`
	PackageID         string          `json:"package_id,omitempty"`
	PackagePrice      *Amount         `json:"package_price"`
	PackageDiscounted bool            `json:"package_discounted"`
	SizeTier          string          `json:"size_tier,omitempty"`
	AddonLines        []AddonLine     `json:"addon_lines"`
	Subtotal          Amount          `json:"subtotal"`
	Tax               Amount          `json:"tax"`
	Total             Amount          `json:"total"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	ContactForPrice   bool            `json:"contact_for_price"`
	PartnerCode       string          `json:"partner_code,omitempty"`

	// ComputedPackagePrice is the numeric package price even when the quoted
	// price is the sentinel. It is kept for the stored booking request only.
	ComputedPackagePrice *decimal.Decimal `json:"-"`
}

// AddonIDs lists the submission ids of the priced add-ons in order.
func (q *Quote) AddonIDs() []string {
	if q == nil {
		return nil
	}
	ids := make([]string, 0, len(q.AddonLines))
	for _, line := range q.AddonLines {
		ids = append(ids, line.ID)
	}
	return ids
}

// Quote prices in against snap. Unknown ids, bundled add-ons selected next to
// their package and duplicate add-on families are validation errors.
func (e *Engine) Quote(snap *catalog.Snapshot, in QuoteInput) (*Quote, error) {
	if snap == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog snapshot is required")
	}
	now := e.now()
	rec := snap.PartnerCode(in.PartnerCode)
	codeValid := IsPartnerCodeValid(in.PartnerCode, rec, now)

	q := &Quote{
		ServiceLine: snap.ServiceLine.Code,
		TaxRate:     e.cfg.TaxRate,
		AddonLines:  make([]AddonLine, 0, len(in.Addons)),
	}
	if codeValid {
		q.PartnerCode = rec.Code
	}
	if tier, ok := ResolveTier(ParsePropertySize(in.PropertySize), snap.SizeTiers); ok {
		q.SizeTier = tier.Code
	}

	var (
		pkg        catalog.Package
		hasPackage bool
	)
	if in.PackageID != "" {
		pkg, hasPackage = snap.Package(in.PackageID)
		if !hasPackage {
			return nil, pkgerrors.FieldErrors("unknown package", map[string]string{
				"package_id": fmt.Sprintf("package %q is not offered for %s", in.PackageID, snap.ServiceLine.Code),
			})
		}
		amount, computed, discounted := e.PackageAmount(pkg, in.PropertySize, in.PartnerCode, snap)
		q.PackageID = pkg.ID
		q.PackagePrice = &amount
		q.PackageDiscounted = discounted
		q.ContactForPrice = amount.IsContactForPrice()
		q.ComputedPackagePrice = &computed
	}

	seen := make(map[string]struct{}, len(in.Addons))
	for _, sel := range in.Addons {
		addon, ok := snap.AddOn(sel.AddonID)
		if !ok {
			return nil, pkgerrors.FieldErrors("unknown add-on", map[string]string{
				"addons": fmt.Sprintf("add-on %q is not offered for %s", sel.AddonID, snap.ServiceLine.Code),
			})
		}
		if hasPackage && pkg.Bundles(addon.ID) {
			return nil, pkgerrors.FieldErrors("add-on already included", map[string]string{
				"addons": fmt.Sprintf("add-on %q is included in package %q", addon.ID, pkg.ID),
			})
		}
		if _, dup := seen[addon.ID]; dup {
			return nil, pkgerrors.FieldErrors("duplicate add-on", map[string]string{
				"addons": fmt.Sprintf("add-on %q is selected more than once", addon.ID),
			})
		}
		seen[addon.ID] = struct{}{}

		line := AddonLine{ID: addon.ID, AddonID: addon.ID, Name: addon.Name}
		if addon.QuantityScaled {
			if sel.Quantity < 1 {
				return nil, pkgerrors.FieldErrors("invalid quantity", map[string]string{
					"quantity": fmt.Sprintf("add-on %q needs a quantity of at least 1", addon.ID),
				})
			}
			line.Quantity = sel.Quantity
			line.ID = catalog.VariantID(addon.ID, sel.Quantity)
		}
		price, discounted := AddonPrice(addon, hasPackage, sel.Quantity, in.PartnerCode, rec, now)
		line.Price = Price(price)
		line.Discounted = discounted
		q.AddonLines = append(q.AddonLines, line)
	}

	if q.ContactForPrice {
		q.Subtotal = ContactForPrice()
		q.Tax = ContactForPrice()
		q.Total = ContactForPrice()
		return q, nil
	}

	parts := make([]Amount, 0, len(q.AddonLines)+1)
	if q.PackagePrice != nil {
		parts = append(parts, *q.PackagePrice)
	}
	for _, line := range q.AddonLines {
		parts = append(parts, line.Price)
	}
	subtotal, err := e.Sum(parts...)
	if err != nil {
		return nil, err
	}
	q.Subtotal = subtotal
	q.Tax = e.Tax(subtotal)
	total, err := e.Sum(subtotal, q.Tax)
	if err != nil {
		return nil, err
	}
	q.Total = total
	return q, nil
}
