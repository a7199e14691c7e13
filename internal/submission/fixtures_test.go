package submission

import (
	"github.com/shopspring/decimal"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/enums"
)

func listingLine() catalog.ServiceLine {
	return catalog.ServiceLine{Code: "listing", Name: "Listing Photography", RequiresAddress: true, AllowsAddonsOnly: true}
}

func readySelection() *selection.Selection {
	sel := selection.New(listingLine())
	sel.Step = enums.BookingStepContact
	sel.PackageID = "signature"
	sel.Addons = []selection.AddonEntry{{AddonID: "virtual-staging", Quantity: 4}}
	sel.Property.Edit(selection.PropertyDetails{Address: "12 Elm St", Suite: "4B", Size: "2000"})
	sel.Property.Commit()
	sel.PartnerCode.Edit("realty10")
	sel.PartnerCode.Applied = "REALTY10"
	return sel
}

func readyQuote() *pricing.Quote {
	pkg := pricing.Price(decimal.NewFromInt(444))
	computed := decimal.NewFromInt(444)
	return &pricing.Quote{
		ServiceLine:  "listing",
		PackageID:    "signature",
		PackagePrice: &pkg,
		AddonLines: []pricing.AddonLine{
			{ID: "virtual-staging-4", AddonID: "virtual-staging", Name: "Virtual Staging", Quantity: 4, Price: pricing.Price(decimal.NewFromInt(48))},
		},
		Subtotal:             pricing.Price(decimal.NewFromInt(492)),
		Tax:                  pricing.Price(decimal.NewFromInt(64)),
		Total:                pricing.Price(decimal.NewFromInt(556)),
		TaxRate:              decimal.RequireFromString("0.13"),
		PartnerCode:          "REALTY10",
		ComputedPackagePrice: &computed,
	}
}

func validRequest() Request {
	return Request{
		Name:           " Jordan Lee ",
		Email:          "Jordan@Example.com",
		Phone:          "416-555-0123",
		PreferredDate:  "2026-11-02",
		PreferredTime:  "morning",
		Message:        "Lockbox on the side door.",
		RecaptchaToken: "tok",
	}
}
