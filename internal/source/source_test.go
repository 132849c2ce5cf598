package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/model"
	"cryptotracker/internal/store/redis"
)

func init() { logger.Discard() }

type fakeBinance struct {
	pairs    []string
	bars     model.Series
	err      error
	calls    int
	interval string
}

func (f *fakeBinance) ExchangeInfo(ctx context.Context) ([]string, error) { return f.pairs, nil }

func (f *fakeBinance) Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	f.calls++
	f.interval = interval
	return f.bars, f.err
}

type fakeGecko struct {
	bars  model.Series
	calls int
	days  string
}

func (f *fakeGecko) MarketChart(ctx context.Context, id, days string) (model.Series, error) {
	f.calls++
	f.days = days
	return f.bars, nil
}

var (
	btc  = model.Coin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}
	rare = model.Coin{ID: "rare-token", Symbol: "rare", Name: "Rare"}
	one  = model.Series{{Time: time.Unix(0, 0), Open: 1, High: 1, Low: 1, Close: 1}}
)

// ────────────────────────────────────────────────────────────
// History routing
// ────────────────────────────────────────────────────────────

func TestHistory_RoutesByPair(t *testing.T) {
	bn := &fakeBinance{pairs: []string{"BTCUSDT"}, bars: one}
	cg := &fakeGecko{bars: one}
	h := NewHistory(bn, cg, 100)
	if n, err := h.LoadPairs(context.Background()); err != nil || n != 1 {
		t.Fatalf("LoadPairs = %d, %v", n, err)
	}

	h.FetchBars(context.Background(), btc, model.TF1M)
	if bn.calls != 1 || cg.calls != 0 || bn.interval != "1M" {
		t.Fatalf("btc: binance=%d gecko=%d interval=%s", bn.calls, cg.calls, bn.interval)
	}

	h.FetchBars(context.Background(), rare, model.TF1w)
	if cg.calls != 1 || cg.days != "90" {
		t.Fatalf("rare: gecko=%d days=%s", cg.calls, cg.days)
	}
}

func TestHistory_ErrorYieldsEmpty(t *testing.T) {
	bn := &fakeBinance{pairs: []string{"BTCUSDT"}, bars: one, err: errors.New("timeout")}
	h := NewHistory(bn, &fakeGecko{}, 100)
	h.SetPairs(bn.pairs)

	fetched := -1
	h.OnFetch = func(d time.Duration, bars int) { fetched = bars }

	if got := h.FetchBars(context.Background(), btc, model.TF1h); len(got) != 0 {
		t.Fatalf("got %d bars, want 0", len(got))
	}
	if fetched != 0 {
		t.Errorf("OnFetch bars = %d, want 0", fetched)
	}
}

// ────────────────────────────────────────────────────────────
// Cached decorator
// ────────────────────────────────────────────────────────────

type memCache struct {
	data map[string]model.Series
	ttls map[string]time.Duration
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string]model.Series{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(ctx context.Context, key string) (model.Series, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return s, nil
}

func (m *memCache) Set(ctx context.Context, key string, s model.Series, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = s
	m.ttls[key] = ttl
	return nil
}

type countingSource struct {
	bars  model.Series
	calls int
}

func (c *countingSource) FetchBars(ctx context.Context, coin model.Coin, tf model.Timeframe) model.Series {
	c.calls++
	return c.bars
}

func TestCached_ReadThrough(t *testing.T) {
	next := &countingSource{bars: one}
	mc := newMemCache()
	c := NewCached(next, mc, time.Minute)
	ctx := context.Background()

	c.FetchBars(ctx, btc, model.TF4h)
	c.FetchBars(ctx, btc, model.TF4h)
	if next.calls != 1 {
		t.Fatalf("next called %d times, want 1", next.calls)
	}
	if ttl := mc.ttls[redis.Key("bitcoin", "4h")]; ttl != 2*time.Minute {
		t.Errorf("ttl = %v, want 2m", ttl)
	}

	c.FetchBars(ctx, btc, model.TF1d)
	if next.calls != 2 {
		t.Fatalf("different timeframe should miss")
	}
}

func TestCached_DegradesOnCacheError(t *testing.T) {
	next := &countingSource{bars: one}
	mc := newMemCache()
	mc.err = redis.ErrCircuitOpen
	c := NewCached(next, mc, time.Minute)

	for i := 0; i < 3; i++ {
		if got := c.FetchBars(context.Background(), btc, model.TF1h); len(got) != 1 {
			t.Fatalf("got %d bars", len(got))
		}
	}
	if next.calls != 3 {
		t.Errorf("next calls = %d, want 3", next.calls)
	}
}

func TestCached_EmptyNotStored(t *testing.T) {
	next := &countingSource{}
	mc := newMemCache()
	c := NewCached(next, mc, time.Minute)
	c.FetchBars(context.Background(), btc, model.TF1h)
	if len(mc.data) != 0 {
		t.Error("empty series must not be cached")
	}
}

var (
	_ model.BarSource = (*History)(nil)
	_ model.BarSource = (*Cached)(nil)
)
