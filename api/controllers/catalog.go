package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snapnest/booking-backend/api/responses"
	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/pkg/logger"
)

// catalogResponse is the public slice of a snapshot. Partner codes stay
// server side.
type catalogResponse struct {
	ServiceLine catalog.ServiceLine `json:"service_line"`
	Packages    []catalog.Package   `json:"packages"`
	AddOns      []catalog.AddOn     `json:"addons"`
	SizeTiers   []catalog.SizeTier  `json:"size_tiers"`
}

func CatalogServiceLines(provider catalog.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines, err := provider.ServiceLines(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"service_lines": lines})
	}
}

func CatalogSnapshot(provider catalog.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		snap, err := provider.Snapshot(ctx, chi.URLParam(r, "serviceLine"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalogResponse{
			ServiceLine: snap.ServiceLine,
			Packages:    snap.Packages,
			AddOns:      snap.AddOns,
			SizeTiers:   snap.SizeTiers,
		})
	}
}
