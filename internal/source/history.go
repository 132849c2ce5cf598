// Package source fetches historical bars for the selected coin, routing
// between Binance klines and the CoinGecko price chart.
package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/model"
)

// KlineClient is the Binance side of History.
type KlineClient interface {
	ExchangeInfo(ctx context.Context) ([]string, error)
	Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error)
}

// ChartClient is the CoinGecko side of History.
type ChartClient interface {
	MarketChart(ctx context.Context, id, days string) (model.Series, error)
}

// History implements model.BarSource. Coins whose USDT pair trades on
// Binance get real OHLCV klines; everything else gets CoinGecko's
// price-only chart.
type History struct {
	binance KlineClient
	gecko   ChartClient
	limit   int
	log     *slog.Logger

	mu    sync.RWMutex
	pairs map[string]struct{}

	// OnFetch is called after every fetch with its duration and bar count.
	OnFetch func(d time.Duration, bars int)
}

// NewHistory creates a History. limit is the kline count per request.
func NewHistory(bn KlineClient, cg ChartClient, limit int) *History {
	if limit <= 0 {
		limit = 100
	}
	return &History{
		binance: bn,
		gecko:   cg,
		limit:   limit,
		log:     logger.Component("source"),
		pairs:   make(map[string]struct{}),
	}
}

// LoadPairs refreshes the set of tradable Binance pairs.
func (h *History) LoadPairs(ctx context.Context) (int, error) {
	pairs, err := h.binance.ExchangeInfo(ctx)
	if err != nil {
		return 0, err
	}
	h.SetPairs(pairs)
	return len(pairs), nil
}

// SetPairs replaces the known pair set.
func (h *History) SetPairs(pairs []string) {
	set := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	h.mu.Lock()
	h.pairs = set
	h.mu.Unlock()
}

// HasPair reports whether symbol is a known Binance pair.
func (h *History) HasPair(symbol string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.pairs[symbol]
	return ok
}

// FetchBars never returns an error: failures are logged and yield an
// empty series, which the dashboard shows as "data unavailable".
func (h *History) FetchBars(ctx context.Context, coin model.Coin, tf model.Timeframe) model.Series {
	start := time.Now()
	var (
		bars  model.Series
		err   error
		route string
	)
	if pair := coin.PairSymbol(); h.HasPair(pair) {
		route = "binance"
		bars, err = h.binance.Klines(ctx, pair, tf.Interval(), h.limit)
	} else {
		route = "coingecko"
		bars, err = h.gecko.MarketChart(ctx, coin.ID, tf.Days())
	}

	attrs := append(logger.LogWithTrace(ctx),
		slog.String("route", route),
		slog.String("coin", coin.ID),
		slog.String("tf", tf.String()),
		slog.Duration("took", time.Since(start)),
	)
	if err != nil {
		h.log.Warn("fetch failed", append(attrs, slog.String("error", err.Error()))...)
		bars = nil
	} else {
		h.log.Debug("fetched bars", append(attrs, slog.Int("bars", len(bars)))...)
	}
	if h.OnFetch != nil {
		h.OnFetch(time.Since(start), len(bars))
	}
	return bars
}
