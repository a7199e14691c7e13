package controllers

import (
	"net/http"

	"github.com/snapnest/booking-backend/api/middleware"
	"github.com/snapnest/booking-backend/api/responses"
	"github.com/snapnest/booking-backend/api/validators"
	"github.com/snapnest/booking-backend/internal/booking"
	"github.com/snapnest/booking-backend/internal/submission"
	"github.com/snapnest/booking-backend/pkg/logger"
)

type startBookingPayload struct {
	ServiceLine string `json:"service_line" validate:"required,max=64"`
}

// BookingStart opens a session and returns its signed handle in both the body
// and the session header.
func BookingStart(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload startBookingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		started, err := svc.Start(ctx, payload.ServiceLine)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.Header().Set(middleware.SessionHeader, started.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, started)
	}
}

func BookingGet(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view, err := svc.Get(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BookingMutate applies one user action. An invalid partner code is not an
// error: it comes back on the selection as partner_code_error.
func BookingMutate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var m booking.Mutation
		if err := validators.DecodeJSONBody(r, &m); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.Mutate(ctx, middleware.SessionIDFromContext(ctx), m)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BookingSubmit finalizes the session. Field validation happens in the
// submission service so honeypot hits never see a validation error.
func BookingSubmit(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submission.Request
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Submit(ctx, middleware.SessionIDFromContext(ctx), req, middleware.ClientIP(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":     result.ID,
			"status": "received",
		})
	}
}
