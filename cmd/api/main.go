package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/snapnest/booking-backend/api/controllers"
	"github.com/snapnest/booking-backend/api/routes"
	"github.com/snapnest/booking-backend/internal/address"
	"github.com/snapnest/booking-backend/internal/booking"
	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/notifications"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/internal/submission"
	"github.com/snapnest/booking-backend/pkg/bigquery"
	"github.com/snapnest/booking-backend/pkg/config"
	"github.com/snapnest/booking-backend/pkg/db"
	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/maps"
	"github.com/snapnest/booking-backend/pkg/metrics"
	"github.com/snapnest/booking-backend/pkg/migrate"
	"github.com/snapnest/booking-backend/pkg/pubsub"
	"github.com/snapnest/booking-backend/pkg/recaptcha"
	"github.com/snapnest/booking-backend/pkg/redis"
)

const (
	serviceName     = "booking-api"
	shutdownTimeout = 20 * time.Second
	mapsRPS         = 20
	mapsBurst       = 10
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient.Close)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	closers = append(closers, redisClient.Close)

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	catalogProvider, err := catalog.NewCachedProvider(
		catalog.NewRepository(dbClient.DB()),
		redisClient,
		cfg.Booking.CatalogCacheTTL,
		logg,
		bookingMetrics,
	)
	requireResource(ctx, logg, "catalog provider", err)

	engine, err := pricing.NewEngine(pricing.Config{
		TaxRate:             cfg.Booking.TaxRate,
		ContactForPriceSqft: cfg.Booking.ContactForPriceSqft,
		Strict:              cfg.Booking.StrictPricing,
	})
	requireResource(ctx, logg, "pricing engine", err)

	addressService := address.NewService(nil)
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey,
			maps.WithRegionCode(cfg.GoogleMaps.RegionCode),
			maps.WithRateLimit(mapsRPS, mapsBurst),
		)
		requireResource(ctx, logg, "google maps", err)
		addressService = address.NewService(mapsClient)
	} else {
		logg.Warn(ctx, "google maps api key not set; address autocomplete disabled")
	}

	submissionOpts := submission.Options{
		Limiter:     redisClient,
		EmailLimit:  cfg.RateLimit.SubmitEmailLimit,
		EmailWindow: cfg.RateLimit.SubmitWindow,
		Metrics:     bookingMetrics,
	}

	if cfg.Recaptcha.Enabled {
		verifier, err := recaptcha.NewClient(cfg.Recaptcha.Secret, cfg.Recaptcha.Action, cfg.Recaptcha.MinScore)
		requireResource(ctx, logg, "recaptcha", err)
		submissionOpts.Verifier = verifier
	}

	var dispatcher *notifications.Dispatcher
	if cfg.FeatureFlags.Notifications {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, pubsubClient.Close)
		readiness["pubsub"] = pubsubClient

		bigqueryClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		requireResource(ctx, logg, "bigquery", err)
		closers = append(closers, bigqueryClient.Close)
		readiness["bigquery"] = bigqueryClient

		dispatcher, err = notifications.NewDispatcher(notifications.Config{
			Publisher: pubsubClient,
			Inserter:  bigqueryClient,
			Timeout:   cfg.Booking.NotifyTimeout,
		}, logg, bookingMetrics)
		requireResource(ctx, logg, "notification dispatcher", err)
		submissionOpts.Notifier = dispatcher
	}

	submissionService, err := submission.NewService(
		submission.NewRepository(dbClient.DB()),
		submission.NewValidator(),
		logg,
		submissionOpts,
	)
	requireResource(ctx, logg, "submission service", err)

	bookingService, err := booking.NewService(booking.ServiceParams{
		Catalog:    catalogProvider,
		Engine:     engine,
		Submission: submissionService,
		Backend:    redisClient,
		Session:    cfg.Session,
		Limits: selection.Limits{
			QuantityMin: cfg.Booking.QuantityMin,
			QuantityMax: cfg.Booking.QuantityMax,
		},
		Logger:  logg,
		Metrics: bookingMetrics,
	})
	requireResource(ctx, logg, "booking service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			readiness,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			redisClient,
			catalogProvider,
			bookingService,
			addressService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	if dispatcher != nil {
		shutdownErr = multierr.Append(shutdownErr, dispatcher.Wait(shutdownCtx))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		shutdownErr = multierr.Append(shutdownErr, closers[i]())
	}
	if shutdownErr != nil {
		logg.Error(shutdownCtx, "api shutdown incomplete", shutdownErr)
		exitCode = 1
	} else {
		logg.Info(shutdownCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
