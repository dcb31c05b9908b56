package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Catalog      CatalogConfig
	Shipping     ShippingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.HTTP.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHIPCALC_APP_ENV" required:"true"`
	Port         string `envconfig:"SHIPCALC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHIPCALC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHIPCALC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// HTTPConfig governs the public API surface.
type HTTPConfig struct {
	CORSAllowedOrigins []string      `envconfig:"SHIPCALC_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitWindow    time.Duration `envconfig:"SHIPCALC_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP     int           `envconfig:"SHIPCALC_RATE_LIMIT_PER_IP" default:"120"`
	// TrustedProxies lists the CIDRs or addresses whose forwarding headers are
	// honored when resolving the client IP. Empty means the socket peer is used.
	TrustedProxies []string `envconfig:"SHIPCALC_TRUSTED_PROXIES"`
	ReadTimeout        time.Duration `envconfig:"SHIPCALC_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout       time.Duration `envconfig:"SHIPCALC_HTTP_WRITE_TIMEOUT" default:"15s"`
}

// TrustedProxyPrefixes parses TrustedProxies; bare addresses become single-host prefixes.
func (h HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(h.TrustedProxies))
	for _, raw := range h.TrustedProxies {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid prefix %q: %w", EnvTrustedProxies, value, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid address %q: %w", EnvTrustedProxies, value, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

type DBConfig struct {
	DSN    string `envconfig:"SHIPCALC_DB_DSN"`
	Driver string `envconfig:"SHIPCALC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHIPCALC_DB_HOST"`
	LegacyPort     int    `envconfig:"SHIPCALC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHIPCALC_DB_USER"`
	LegacyPassword string `envconfig:"SHIPCALC_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHIPCALC_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHIPCALC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHIPCALC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHIPCALC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHIPCALC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHIPCALC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the catalog is served from a local sqlite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHIPCALC_REDIS_URL"`
	Address      string        `envconfig:"SHIPCALC_REDIS_ADDR"`
	Password     string        `envconfig:"SHIPCALC_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHIPCALC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHIPCALC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHIPCALC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHIPCALC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHIPCALC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHIPCALC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHIPCALC_AUTO_MIGRATE" default:"false"`
	// FreeShippingTestTag enables the "testowy" zero-cost shipping override.
	FreeShippingTestTag bool `envconfig:"SHIPCALC_FEATURE_FREE_SHIPPING_TEST_TAG" default:"true"`
}

type CatalogConfig struct {
	CacheEnabled bool          `envconfig:"SHIPCALC_CATALOG_CACHE_ENABLED" default:"true"`
	CacheTTL     time.Duration `envconfig:"SHIPCALC_CATALOG_CACHE_TTL" default:"5m"`
}

// ShippingConfig holds the static carrier rate table and tag vocabulary.
type ShippingConfig struct {
	PaczkomatPrice       decimal.Decimal `envconfig:"SHIPCALC_RATE_PACZKOMAT" default:"15.99"`
	InPostCourierPrice   decimal.Decimal `envconfig:"SHIPCALC_RATE_INPOST_COURIER" default:"19.99"`
	DPDCourierPrice      decimal.Decimal `envconfig:"SHIPCALC_RATE_DPD_COURIER" default:"18.99"`
	GabarytFallbackPrice decimal.Decimal `envconfig:"SHIPCALC_RATE_GABARYT_FALLBACK" default:"99.00"`
	DefaultCarrier       string          `envconfig:"SHIPCALC_DEFAULT_CARRIER" default:"inpost_courier"`
	KnownWholesalers     []string        `envconfig:"SHIPCALC_KNOWN_WHOLESALERS"`
	FreeShippingTag      string          `envconfig:"SHIPCALC_FREE_SHIPPING_TAG" default:"testowy"`
}

func (s ShippingConfig) validate() error {
	prices := map[string]decimal.Decimal{
		EnvRatePaczkomat:       s.PaczkomatPrice,
		EnvRateInPostCourier:   s.InPostCourierPrice,
		EnvRateDPDCourier:      s.DPDCourierPrice,
		EnvRateGabarytFallback: s.GabarytFallbackPrice,
	}
	for _, env := range rateEnvVars {
		if prices[env].IsNegative() {
			return fmt.Errorf("%s must not be negative", env)
		}
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
