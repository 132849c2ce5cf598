package model

import "time"

// Tick is a single streamed price update for one trading pair.
type Tick struct {
	Symbol string    `json:"symbol"` // exchange pair, e.g. "BTCUSDT"
	Price  float64   `json:"price"`  // last traded price
	TS     time.Time `json:"ts"`     // receive time (UTC)
}
