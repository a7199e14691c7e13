package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/snapnest/booking-backend/api/controllers"
	"github.com/snapnest/booking-backend/api/middleware"
	"github.com/snapnest/booking-backend/internal/address"
	"github.com/snapnest/booking-backend/internal/booking"
	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/pkg/config"
	"github.com/snapnest/booking-backend/pkg/logger"
	pkgredis "github.com/snapnest/booking-backend/pkg/redis"
)

// RedisStore is the redis surface the HTTP layer needs for idempotency and
// rate limiting.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	metricsHandler http.Handler,
	redisStore RedisStore,
	catalogProvider catalog.Provider,
	bookingService booking.Service,
	addressService address.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	submitPolicy := middleware.NewRateLimitPolicy(
		"submit",
		cfg.RateLimit.SubmitWindow,
		cfg.RateLimit.SubmitIPLimit,
	)
	idempotency := middleware.Idempotency(redisStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/service-lines", controllers.CatalogServiceLines(catalogProvider, logg))
			r.Get("/{serviceLine}", controllers.CatalogSnapshot(catalogProvider, logg))
		})

		r.Post("/quotes", controllers.QuoteCreate(bookingService, logg))
		r.With(idempotency).Post("/booking/sessions", controllers.BookingStart(bookingService, logg))

		r.Route("/booking/session", func(r chi.Router) {
			r.Use(middleware.BookingSession(cfg.Session, logg))
			r.Use(idempotency)

			r.Get("/", controllers.BookingGet(bookingService, logg))
			r.Get("/ping", controllers.SessionPing())
			r.Post("/mutations", controllers.BookingMutate(bookingService, logg))
			r.With(middleware.RateLimit(submitPolicy, redisStore, logg)).
				Post("/submit", controllers.BookingSubmit(bookingService, logg))

			r.Get("/address/suggest", controllers.AddressSuggest(addressService, logg))
			r.Post("/address/resolve", controllers.AddressResolve(addressService, logg))
		})
	})

	return r
}
