package booking

import (
	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/enums"
)

// PackageOption is a package card priced for the current property size and
// partner code.
type PackageOption struct {
	catalog.Package
	Price      pricing.Amount `json:"price"`
	Discounted bool           `json:"discounted"`
	Selected   bool           `json:"selected"`
}

// AddonOption is a purchasable add-on priced for the current selection. For
// quantity-scaled add-ons Price covers Quantity units.
type AddonOption struct {
	catalog.AddOn
	Quantity   int            `json:"quantity,omitempty"`
	Price      pricing.Amount `json:"price"`
	Discounted bool           `json:"discounted"`
	Selected   bool           `json:"selected"`
}

// View is everything the booking UI renders for one session.
type View struct {
	SessionID            string               `json:"session_id"`
	Version              int64                `json:"version"`
	ServiceLine          catalog.ServiceLine  `json:"service_line"`
	Steps                []enums.BookingStep  `json:"steps"`
	Selection            *selection.Selection `json:"selection"`
	Packages             []PackageOption      `json:"packages"`
	Addons               []AddonOption        `json:"addons"`
	SizeTiers            []catalog.SizeTier   `json:"size_tiers"`
	Quote                *pricing.Quote       `json:"quote"`
	CanCompleteBooking   bool                 `json:"can_complete_booking"`
	AutocompleteAttached bool                 `json:"autocomplete_attached"`
}

func buildView(engine *pricing.Engine, machine *selection.Machine, state *State, quote *pricing.Quote) *View {
	snap := machine.Snapshot()
	sel := state.Selection
	size := sel.Property.Applied.Size
	code := sel.PartnerCode.Applied

	packages := make([]PackageOption, 0, len(snap.Packages))
	for _, pkg := range snap.Packages {
		amount, _, discounted := engine.PackageAmount(pkg, size, code, snap)
		packages = append(packages, PackageOption{
			Package:    pkg,
			Price:      amount,
			Discounted: discounted,
			Selected:   pkg.ID == sel.PackageID,
		})
	}

	purchasable := machine.PurchasableAddons(sel)
	addons := make([]AddonOption, 0, len(purchasable))
	for _, addon := range purchasable {
		qty := 0
		if addon.QuantityScaled {
			qty = machine.QuantityFor(sel, addon.ID)
		}
		price, discounted := pricing.AddonPrice(addon, sel.HasPackage(), qty, code, snap.PartnerCode(code), engine.Now())
		addons = append(addons, AddonOption{
			AddOn:      addon,
			Quantity:   qty,
			Price:      pricing.Price(price),
			Discounted: discounted,
			Selected:   sel.HasAddon(addon.ID),
		})
	}

	return &View{
		SessionID:            state.SessionID,
		Version:              state.Version,
		ServiceLine:          snap.ServiceLine,
		Steps:                machine.Steps(),
		Selection:            sel,
		Packages:             packages,
		Addons:               addons,
		SizeTiers:            snap.SizeTiers,
		Quote:                quote,
		CanCompleteBooking:   sel.CanCompleteBooking(),
		AutocompleteAttached: sel.AutocompleteAttached(),
	}
}
