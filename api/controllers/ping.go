package controllers

import (
	"net/http"

	"github.com/snapnest/booking-backend/api/middleware"
	"github.com/snapnest/booking-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// SessionPing confirms a booking session handle is still accepted.
func SessionPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "session", "status": "ok"}
		if line := middleware.ServiceLineFromContext(r.Context()); line != "" {
			payload["service_line"] = line
		}
		responses.WriteSuccess(w, payload)
	}
}
