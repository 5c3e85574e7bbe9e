package ratestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/redis"
)

// CacheKey is the Redis key holding the serialised configuration.
const CacheKey = "rates:config"

// KV is the slice of the Redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var _ KV = (*redis.Client)(nil)

// CachedStore is a read-through cache in front of another Store. A cache
// outage degrades to reading the backing store.
type CachedStore struct {
	next   Store
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(next Store, kv KV, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{next: next, kv: kv, ttl: ttl, logger: logger}
}

func (c *CachedStore) Load(ctx context.Context) (pricing.RateConfiguration, error) {
	data, err := c.kv.Get(ctx, CacheKey)
	switch {
	case err == nil:
		rc := pricing.NewRateConfiguration()
		jerr := json.Unmarshal(data, &rc)
		if jerr == nil {
			return rc, nil
		}
		c.logger.Warn("discarding undecodable cached rates", zap.Error(jerr))
	case errors.Is(err, redis.ErrNotFound):
	default:
		c.logger.Warn("rate cache read failed", zap.Error(err))
	}

	rc, err := c.next.Load(ctx)
	if err != nil {
		return pricing.RateConfiguration{}, err
	}

	data, err = json.Marshal(rc)
	if err != nil {
		c.logger.Warn("encode rates for cache", zap.Error(err))
		return rc, nil
	}
	if err := c.kv.Set(ctx, CacheKey, data, c.ttl); err != nil {
		c.logger.Warn("rate cache write failed", zap.Error(err))
	}
	return rc, nil
}

// Save writes through to the backing store and drops the cached copy.
func (c *CachedStore) Save(ctx context.Context, rc pricing.RateConfiguration) error {
	if err := c.next.Save(ctx, rc); err != nil {
		return err
	}
	if err := c.kv.Del(ctx, CacheKey); err != nil {
		c.logger.Warn("rate cache invalidation failed", zap.Error(err))
	}
	return nil
}
