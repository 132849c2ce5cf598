package model

import "strings"

// Coin is the metadata record for a tradable asset.
type Coin struct {
	ID     string `json:"id"`     // CoinGecko id, e.g. "bitcoin"
	Symbol string `json:"symbol"` // ticker, e.g. "btc"
	Name   string `json:"name"`
	Rank   int    `json:"rank"`
	Source string `json:"source"`
}

// PairSymbol returns the Binance USDT pair for this coin: "BTCUSDT".
func (c Coin) PairSymbol() string {
	return strings.ToUpper(c.Symbol) + "USDT"
}

// Label is the display form used by the search list: "BTC - Bitcoin".
func (c Coin) Label() string {
	return strings.ToUpper(c.Symbol) + " - " + c.Name
}

// MarketCoin is a coin together with its market snapshot, as shown in the sidebar.
type MarketCoin struct {
	Coin
	Price     float64 `json:"current_price"`
	ChangePct float64 `json:"price_change_percentage_24h"`
	Volume    float64 `json:"total_volume"`
}
