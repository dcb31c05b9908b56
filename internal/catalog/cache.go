package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/shipcalc-backend/internal/shipping"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
	"github.com/angelmondragon/shipcalc-backend/pkg/metrics"
)

const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

type profileStore interface {
	MGet(ctx context.Context, keys ...string) ([]any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CatalogProfileKey(variantID string) string
}

// CachedLoader serves tag profiles from redis and falls through to the
// wrapped loader for misses. Cache failures never fail a calculation.
type CachedLoader struct {
	next    shipping.ProfileLoader
	store   profileStore
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.ShippingMetrics
}

// NewCachedLoader wraps next with a read-through profile cache.
func NewCachedLoader(next shipping.ProfileLoader, store profileStore, ttl time.Duration, logg *logger.Logger, m *metrics.ShippingMetrics) (*CachedLoader, error) {
	if next == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	if store == nil {
		return nil, fmt.Errorf("profile store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &CachedLoader{next: next, store: store, ttl: ttl, logg: logg, metrics: m}, nil
}

// LoadProfiles returns cached profiles and loads the remainder in one batch.
// Unresolved variants are not cached.
func (c *CachedLoader) LoadProfiles(ctx context.Context, variantIDs []string) (map[string]shipping.ProductTagProfile, error) {
	if len(variantIDs) == 0 {
		return map[string]shipping.ProductTagProfile{}, nil
	}

	keys := make([]string, len(variantIDs))
	for i, id := range variantIDs {
		keys[i] = c.store.CatalogProfileKey(id)
	}

	values, err := c.store.MGet(ctx, keys...)
	if err != nil || len(values) != len(keys) {
		if err == nil {
			err = fmt.Errorf("mget returned %d values for %d keys", len(values), len(keys))
		}
		c.metrics.IncCache(cacheError, len(keys))
		c.warn(ctx, "catalog cache read failed", err)
		return c.loadAndStore(ctx, variantIDs, keys)
	}

	profiles := make(map[string]shipping.ProductTagProfile, len(variantIDs))
	var (
		missingIDs  []string
		missingKeys []string
		corrupt     []string
	)
	for i, value := range values {
		profile, ok := decodeProfile(value)
		if !ok {
			if value != nil {
				corrupt = append(corrupt, keys[i])
			}
			missingIDs = append(missingIDs, variantIDs[i])
			missingKeys = append(missingKeys, keys[i])
			continue
		}
		profiles[variantIDs[i]] = profile
	}

	c.metrics.IncCache(cacheHit, len(profiles))
	c.metrics.IncCache(cacheMiss, len(missingIDs))

	if len(corrupt) > 0 {
		if err := c.store.Del(ctx, corrupt...); err != nil {
			c.warn(ctx, "catalog cache eviction failed", err)
		}
	}

	if len(missingIDs) == 0 {
		return profiles, nil
	}

	loaded, err := c.loadAndStore(ctx, missingIDs, missingKeys)
	if err != nil {
		return nil, err
	}
	for id, profile := range loaded {
		profiles[id] = profile
	}
	return profiles, nil
}

func (c *CachedLoader) loadAndStore(ctx context.Context, variantIDs, keys []string) (map[string]shipping.ProductTagProfile, error) {
	loaded, err := c.next.LoadProfiles(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	for i, id := range variantIDs {
		profile, ok := loaded[id]
		if !ok {
			continue
		}
		payload, err := json.Marshal(profile)
		if err != nil {
			c.warn(ctx, "catalog cache encode failed", err)
			continue
		}
		if err := c.store.Set(ctx, keys[i], string(payload), c.ttl); err != nil {
			// stop writing once redis rejects a write
			c.warn(ctx, "catalog cache write failed", err)
			return loaded, nil
		}
	}
	return loaded, nil
}

func decodeProfile(value any) (shipping.ProductTagProfile, bool) {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return shipping.ProductTagProfile{}, false
	}
	var profile shipping.ProductTagProfile
	if err := json.Unmarshal(raw, &profile); err != nil || profile.ProductID == "" {
		return shipping.ProductTagProfile{}, false
	}
	if profile.Tags == nil {
		profile.Tags = []string{}
	}
	return profile, true
}

func (c *CachedLoader) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}
