package controllers

import (
	"net/http"

	"github.com/snapnest/booking-backend/api/responses"
	"github.com/snapnest/booking-backend/api/validators"
	"github.com/snapnest/booking-backend/internal/booking"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/pkg/logger"
)

type quoteAddonPayload struct {
	AddonID  string `json:"addon_id" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type quotePayload struct {
	ServiceLine  string              `json:"service_line" validate:"required,max=64"`
	PackageID    string              `json:"package_id" validate:"max=120"`
	Addons       []quoteAddonPayload `json:"addons" validate:"max=50,dive"`
	PropertySize string              `json:"property_size" validate:"max=32"`
	PartnerCode  string              `json:"partner_code" validate:"max=64"`
}

// QuoteCreate prices a selection without opening a booking session.
func QuoteCreate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload quotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		in := pricing.QuoteInput{
			PackageID:    payload.PackageID,
			PropertySize: payload.PropertySize,
			PartnerCode:  payload.PartnerCode,
			Addons:       make([]pricing.AddonInput, 0, len(payload.Addons)),
		}
		for _, addon := range payload.Addons {
			in.Addons = append(in.Addons, pricing.AddonInput{AddonID: addon.AddonID, Quantity: addon.Quantity})
		}

		quote, err := svc.Quote(ctx, payload.ServiceLine, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
