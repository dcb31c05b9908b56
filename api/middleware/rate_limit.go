package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/angelmondragon/shipcalc-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
)

// RateLimiterStore counts requests per scope in fixed windows.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy defines the per-IP throttling parameters for a route group.
type RateLimitPolicy struct {
	name    string
	window  time.Duration
	limit   int
	trusted []netip.Prefix
}

// NewRateLimitPolicy builds a policy with the supplied window and per-IP limit.
func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

// WithTrustedProxies returns a copy of the policy that honors forwarding
// headers from peers inside the given prefixes.
func (p RateLimitPolicy) WithTrustedProxies(prefixes []netip.Prefix) RateLimitPolicy {
	p.trusted = append([]netip.Prefix(nil), prefixes...)
	return p
}

func (p RateLimitPolicy) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "api"
	}
	return p.name
}

func (p RateLimitPolicy) scope(ip string) string {
	return "ip:" + p.normalizedName() + ":" + ip
}

// RateLimit enforces a fixed-window request counter per client IP. A nil store
// or a disabled policy passes every request through. Counter failures fail
// open so a redis outage never blocks quoting.
func RateLimit(policy RateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := policy.clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(ip), int64(policy.limit), policy.window)
			if err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "policy", policy.normalizedName()), "rate_limit.store_failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.normalizedName(),
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller address. Forwarding headers are only read when
// the socket peer is a trusted proxy; X-Forwarded-For is walked right to left
// and the first untrusted hop wins.
func (p RateLimitPolicy) clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !p.isTrusted(peer) {
		return host
	}

	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		hops := strings.Split(header, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !p.isTrusted(hop) {
				return hop.Unmap().String()
			}
		}
	}
	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return host
}
