package config

const (
	EnvPrefix = "SHIPCALC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "SHIPCALC_APP_ENV"
	EnvPort     = "SHIPCALC_APP_PORT"
	EnvLogLevel = "SHIPCALC_LOG_LEVEL"

	EnvCORSAllowedOrigins = "SHIPCALC_CORS_ALLOWED_ORIGINS"
	EnvRateLimitPerIP     = "SHIPCALC_RATE_LIMIT_PER_IP"
	EnvTrustedProxies     = "SHIPCALC_TRUSTED_PROXIES"

	EnvDBDSN    = "SHIPCALC_DB_DSN"
	EnvDBDriver = "SHIPCALC_DB_DRIVER"
	EnvDBHost   = "SHIPCALC_DB_HOST"
	EnvDBUser   = "SHIPCALC_DB_USER"
	EnvDBName   = "SHIPCALC_DB_NAME"

	EnvRedisURL = "SHIPCALC_REDIS_URL"

	EnvCatalogCacheTTL = "SHIPCALC_CATALOG_CACHE_TTL"

	EnvRatePaczkomat       = "SHIPCALC_RATE_PACZKOMAT"
	EnvRateInPostCourier   = "SHIPCALC_RATE_INPOST_COURIER"
	EnvRateDPDCourier      = "SHIPCALC_RATE_DPD_COURIER"
	EnvRateGabarytFallback = "SHIPCALC_RATE_GABARYT_FALLBACK"
	EnvDefaultCarrier      = "SHIPCALC_DEFAULT_CARRIER"
	EnvKnownWholesalers    = "SHIPCALC_KNOWN_WHOLESALERS"
	EnvFreeShippingTag     = "SHIPCALC_FREE_SHIPPING_TAG"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

var rateEnvVars = []string{
	EnvRatePaczkomat,
	EnvRateInPostCourier,
	EnvRateDPDCourier,
	EnvRateGabarytFallback,
}
