package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shipcalc"

// ShippingMetrics records calculation outcomes, package shapes and catalog
// cache behaviour. A nil receiver or one built without a registerer is a no-op.
type ShippingMetrics struct {
	calculations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	packages     *prometheus.HistogramVec
	unresolved   prometheus.Counter
	cache        *prometheus.CounterVec
}

// NewShippingMetrics registers the shipping metrics on the provided registerer.
func NewShippingMetrics(reg prometheus.Registerer) *ShippingMetrics {
	if reg == nil {
		return &ShippingMetrics{}
	}
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calculations_total",
		Help:      "Shipping calculations by mode and outcome.",
	}, []string{"mode", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calculation_duration_seconds",
		Help:      "Duration of shipping calculations including the catalog fetch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})
	packages := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "packages_per_cart",
		Help:      "Packages produced per calculation by package kind.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	}, []string{"kind"})
	unresolved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unresolved_variants_total",
		Help:      "Cart variants missing from the catalog.",
	})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_lookups_total",
		Help:      "Catalog profile cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(calculations, duration, packages, unresolved, cache)
	return &ShippingMetrics{
		calculations: calculations,
		duration:     duration,
		packages:     packages,
		unresolved:   unresolved,
		cache:        cache,
	}
}

// ObserveCalculation records one calculation call.
func (m *ShippingMetrics) ObserveCalculation(mode, outcome string, duration time.Duration) {
	if m == nil || m.calculations == nil {
		return
	}
	mode = normalizeLabel(mode)
	m.calculations.WithLabelValues(mode, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(mode).Observe(duration.Seconds())
}

// ObservePackages records how many packages of a kind a cart produced.
func (m *ShippingMetrics) ObservePackages(kind string, count int) {
	if m == nil || m.packages == nil {
		return
	}
	m.packages.WithLabelValues(normalizeLabel(kind)).Observe(float64(count))
}

// AddUnresolved counts variants the catalog could not resolve.
func (m *ShippingMetrics) AddUnresolved(count int) {
	if m == nil || m.unresolved == nil || count <= 0 {
		return
	}
	m.unresolved.Add(float64(count))
}

// IncCache counts a cache lookup result (hit, miss, error).
func (m *ShippingMetrics) IncCache(result string, n int) {
	if m == nil || m.cache == nil || n <= 0 {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
