package model

import (
	"encoding/json"
	"time"
)

// Bar is one OHLCV sample for a fixed time bucket.
// Prices are float64 USD values as delivered by the exchanges.
type Bar struct {
	Time   time.Time `json:"time"` // bucket open time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Bullish reports whether the bar closed at or above its open.
func (b Bar) Bullish() bool { return b.Close >= b.Open }

// Series is an ordered sequence of bars, oldest first.
// A Series is replaced wholesale on every reload and never mutated in place.
type Series []Bar

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Closes extracts the close prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Stats returns the highest high, lowest low and summed volume across the series.
// Non-positive prices are ignored.
func (s Series) Stats() (high, low, volume float64) {
	for _, b := range s {
		if b.High > 0 && b.High > high {
			high = b.High
		}
		if b.Low > 0 && (low == 0 || b.Low < low) {
			low = b.Low
		}
		volume += b.Volume
	}
	return high, low, volume
}

// JSON encodes the series. Non-finite prices cannot be encoded and return
// an error.
func (s Series) JSON() ([]byte, error) {
	return json.Marshal(s)
}
