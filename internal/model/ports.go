package model

import "context"

// ── Collaborator ports ──
// These interfaces decouple the dashboard core from the concrete exchange clients
// and stores (Binance, CoinGecko, SQLite, Redis).

// BarSource fetches historical bars. Implementations fail silently: any
// transport or decode failure yields an empty Series, never an error.
type BarSource interface {
	FetchBars(ctx context.Context, coin Coin, tf Timeframe) Series
}

// CoinStore holds symbol metadata and favorites.
type CoinStore interface {
	SaveCoins(coins []Coin) error
	ListAll() ([]Coin, error)
	Search(query string) ([]Coin, error)
	IsEmpty() (bool, error)

	ListFavorites() ([]string, error)
	AddFavorite(id string) error
	RemoveFavorite(id string) error
}

// MarketSource provides sidebar market snapshots.
type MarketSource interface {
	TopCoins(ctx context.Context, limit int) ([]MarketCoin, error)
	CoinsByIDs(ctx context.Context, ids []string) ([]MarketCoin, error)
	Trending(ctx context.Context) ([]MarketCoin, error)
	GainersLosers(ctx context.Context, n int) (gainers, losers []MarketCoin, err error)
}

// KeySource is a non-blocking keyboard primitive: it returns the next pending
// key or ok=false when none is queued. It never waits.
type KeySource interface {
	NextKey() (key string, ok bool)
}
