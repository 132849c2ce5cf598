package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/model"
	"cryptotracker/internal/store/redis"
)

// BarCache is the subset of redis.BarCache used here.
type BarCache interface {
	Get(ctx context.Context, key string) (model.Series, error)
	Set(ctx context.Context, key string, series model.Series, ttl time.Duration) error
}

// Cached decorates a BarSource with a read-through cache. Cache errors only
// degrade to an uncached fetch.
type Cached struct {
	next  model.BarSource
	cache BarCache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCached wraps next. ttl is the lifetime for intraday timeframes; longer
// timeframes keep their entries proportionally longer.
func NewCached(next model.BarSource, cache BarCache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cached{next: next, cache: cache, ttl: ttl, log: logger.Component("cache")}
}

// TTL returns the cache lifetime for tf.
func (c *Cached) TTL(tf model.Timeframe) time.Duration {
	switch tf {
	case model.TF1m, model.TF5m, model.TF15m, model.TF30m:
		return c.ttl
	case model.TF1h, model.TF4h:
		return 2 * c.ttl
	default:
		return 10 * c.ttl
	}
}

// FetchBars implements model.BarSource.
func (c *Cached) FetchBars(ctx context.Context, coin model.Coin, tf model.Timeframe) model.Series {
	key := redis.Key(coin.ID, tf.String())

	bars, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && len(bars) > 0:
		return bars
	case err == nil, errors.Is(err, redis.ErrCacheMiss):
	default:
		c.log.Debug("cache get failed", append(logger.LogWithTrace(ctx),
			slog.String("key", key), slog.String("error", err.Error()))...)
	}

	bars = c.next.FetchBars(ctx, coin, tf)
	if len(bars) == 0 {
		return bars
	}
	if err := c.cache.Set(ctx, key, bars, c.TTL(tf)); err != nil {
		c.log.Debug("cache set failed", append(logger.LogWithTrace(ctx),
			slog.String("key", key), slog.String("error", err.Error()))...)
	}
	return bars
}
