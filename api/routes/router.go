package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shipcalc-backend/api/controllers"
	shippingcontrollers "github.com/angelmondragon/shipcalc-backend/api/controllers/shipping"
	"github.com/angelmondragon/shipcalc-backend/api/middleware"
	"github.com/angelmondragon/shipcalc-backend/internal/shipping"
	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
)

// NewRouter mounts the health, metrics and shipping routes. cachePinger and
// limiter may be nil when redis is not configured; metricsHandler may be nil
// to leave /metrics unmounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	cachePinger controllers.Pinger,
	limiter middleware.RateLimiterStore,
	shippingService shipping.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, cachePinger))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	shippingPolicy := middleware.NewRateLimitPolicy("shipping", cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitPerIP)
	if trusted, err := cfg.HTTP.TrustedProxyPrefixes(); err == nil {
		shippingPolicy = shippingPolicy.WithTrustedProxies(trusted)
	} else if logg != nil {
		logg.Error(context.Background(), "rate_limit.trusted_proxies_invalid", err)
	}

	r.Route("/api/v1/shipping", func(r chi.Router) {
		r.Use(middleware.RateLimit(shippingPolicy, limiter, logg))
		r.Post("/calculate", shippingcontrollers.Calculate(shippingService, logg))
		r.Post("/options", shippingcontrollers.CartOptions(shippingService, logg))
		r.Post("/packages", shippingcontrollers.PackageOptions(shippingService, logg))
	})

	return r
}
