package controllers

import (
	"net/http"

	"github.com/snapnest/booking-backend/api/middleware"
	"github.com/snapnest/booking-backend/api/responses"
	"github.com/snapnest/booking-backend/api/validators"
	"github.com/snapnest/booking-backend/internal/address"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
)

type resolveAddressPayload struct {
	PlaceID string `json:"place_id" validate:"required,max=300"`
}

// AddressSuggest returns autocomplete suggestions for the property step. The
// booking session id groups the keystrokes for the places API.
func AddressSuggest(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "address service unavailable"))
			return
		}

		query := r.URL.Query()
		req := address.SuggestRequest{
			Query:        validators.QueryParam(query, "query", 200),
			Language:     validators.QueryParam(query, "language", 16),
			SessionToken: middleware.SessionIDFromContext(ctx),
		}

		resp, err := svc.Suggest(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"suggestions": resp})
	}
}

// AddressResolve resolves the picked suggestion. Reusing the session id as the
// places token closes the autocomplete billing session.
func AddressResolve(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "address service unavailable"))
			return
		}

		var payload resolveAddressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		addr, err := svc.Resolve(ctx, address.ResolveRequest{
			PlaceID:      payload.PlaceID,
			SessionToken: middleware.SessionIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}
