package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cryptotracker/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	keyPrefix           = "cryptotracker:bars:"
	defaultMaxFailures  = 5
	defaultResetTimeout = 10 * time.Second
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Config configures the Redis bar cache.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int

	MaxFailures  int           // consecutive failures before the breaker opens (default 5)
	ResetTimeout time.Duration // open period before a trial call is allowed (default 10s)
}

// BarCache stores JSON-encoded bar series keyed by pair and timeframe.
// Every round trip goes through a CircuitBreaker so a dead Redis costs one
// rejected call instead of a dial timeout per reload.
type BarCache struct {
	client *goredis.Client
	cb     *CircuitBreaker

	// Optional hooks for metrics.
	OnHit  func()
	OnMiss func()
}

// New creates a BarCache and pings the server.
func New(cfg Config) (*BarCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return newBarCache(client, cfg), nil
}

func newBarCache(client *goredis.Client, cfg Config) *BarCache {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	cb := NewCircuitBreaker(cfg.MaxFailures, cfg.ResetTimeout)
	cb.OnStateChange = func(from, to State) {
		log.Printf("[redis] circuit breaker %s -> %s", from, to)
	}
	return &BarCache{client: client, cb: cb}
}

// Breaker exposes the circuit breaker for metrics.
func (c *BarCache) Breaker() *CircuitBreaker { return c.cb }

// Key builds the cache key for a pair/coin and timeframe label.
func Key(symbol, timeframe string) string {
	return keyPrefix + symbol + ":" + timeframe
}

// Get loads a cached series. Absent keys return ErrCacheMiss; an open
// breaker returns ErrCircuitOpen.
func (c *BarCache) Get(ctx context.Context, key string) (model.Series, error) {
	var raw []byte
	miss := false
	err := c.cb.Execute(func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			miss = true
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		return nil, err
	}
	if miss {
		c.fire(c.OnMiss)
		return nil, ErrCacheMiss
	}

	var bars model.Series
	if err := json.Unmarshal(raw, &bars); err != nil {
		c.fire(c.OnMiss)
		return nil, fmt.Errorf("redis decode %s: %w", key, err)
	}
	c.fire(c.OnHit)
	return bars, nil
}

// Set stores series under key for ttl. Empty series are not cached; a series
// that cannot be encoded is rejected before any round trip.
func (c *BarCache) Set(ctx context.Context, key string, series model.Series, ttl time.Duration) error {
	if len(series) == 0 {
		return nil
	}
	payload, err := series.JSON()
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	return c.cb.Execute(func() error {
		return c.client.Set(ctx, key, payload, ttl).Err()
	})
}

// Ping checks connectivity, bypassing the breaker.
func (c *BarCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *BarCache) Close() error {
	return c.client.Close()
}

func (c *BarCache) fire(hook func()) {
	if hook != nil {
		hook()
	}
}
