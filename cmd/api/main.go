package main

import (
	"context"
	"errors"
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

	"github.com/angelmondragon/shipcalc-backend/api/controllers"
	"github.com/angelmondragon/shipcalc-backend/api/middleware"
	"github.com/angelmondragon/shipcalc-backend/api/routes"
	"github.com/angelmondragon/shipcalc-backend/internal/catalog"
	"github.com/angelmondragon/shipcalc-backend/internal/shipping"
	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/db"
	"github.com/angelmondragon/shipcalc-backend/pkg/instance"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
	"github.com/angelmondragon/shipcalc-backend/pkg/metrics"
	"github.com/angelmondragon/shipcalc-backend/pkg/migrate"
	"github.com/angelmondragon/shipcalc-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; catalog cache and rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shippingMetrics := metrics.NewShippingMetrics(registry)

	var profiles shipping.ProfileLoader = catalog.NewRepository(dbClient.DB())
	if redisClient != nil && cfg.Catalog.CacheEnabled {
		cached, err := catalog.NewCachedLoader(profiles, redisClient, cfg.Catalog.CacheTTL, logg, shippingMetrics)
		if err != nil {
			logg.Error(ctx, "failed to create catalog cache", err)
			os.Exit(1)
		}
		profiles = cached
	}

	rates, err := shipping.NewRateTable(cfg.Shipping)
	if err != nil {
		logg.Error(ctx, "invalid shipping rate table", err)
		os.Exit(1)
	}

	freeShippingTag := ""
	if cfg.FeatureFlags.FreeShippingTestTag {
		freeShippingTag = cfg.Shipping.FreeShippingTag
	}

	shippingService, err := shipping.NewService(shipping.ServiceParams{
		Catalog:    profiles,
		Classifier: shipping.NewClassifier(cfg.Shipping.KnownWholesalers),
		Builder:    shipping.NewBuilder(freeShippingTag),
		Rates:      rates,
		Logger:     logg,
		Metrics:    shippingMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create shipping service", err)
		os.Exit(1)
	}

	var (
		cachePinger controllers.Pinger
		limiter     middleware.RateLimiterStore
	)
	if redisClient != nil {
		cachePinger = redisClient
		limiter = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, cachePinger, limiter, shippingService, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	if shutdownErr != nil {
		logg.Error(ctx, "error during shutdown", shutdownErr)
		exitCode = 1
	}

	logg.Info(ctx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
