package model

import "strings"

// Timeframe is the bar bucket size selected in the view.
type Timeframe int

const (
	TF1m Timeframe = iota
	TF5m
	TF15m
	TF30m
	TF1h
	TF4h
	TF1d
	TF1w
	TF1M
	TF1y
)

var timeframeInfo = [...]struct {
	label    string
	interval string // Binance kline interval
	days     string // CoinGecko market_chart days
}{
	TF1m:  {"1m", "1m", "1"},
	TF5m:  {"5m", "5m", "1"},
	TF15m: {"15m", "15m", "1"},
	TF30m: {"30m", "30m", "1"},
	TF1h:  {"1h", "1h", "1"},
	TF4h:  {"4h", "4h", "1"},
	TF1d:  {"1d", "1d", "30"},
	TF1w:  {"1w", "1w", "90"},
	TF1M:  {"1mo", "1M", "365"},
	TF1y:  {"1y", "1M", "max"},
}

func (t Timeframe) valid() bool { return t >= 0 && int(t) < len(timeframeInfo) }

// String returns the short label shown in the UI, e.g. "4h".
func (t Timeframe) String() string {
	if !t.valid() {
		return "1h"
	}
	return timeframeInfo[t].label
}

// Interval returns the Binance kline interval for this timeframe.
func (t Timeframe) Interval() string {
	if !t.valid() {
		return "1h"
	}
	return timeframeInfo[t].interval
}

// Days returns the CoinGecko market_chart "days" parameter for this timeframe.
func (t Timeframe) Days() string {
	if !t.valid() {
		return "1"
	}
	return timeframeInfo[t].days
}

// ParseTimeframe maps a label back to a Timeframe. Unknown labels return TF1h, false.
func ParseTimeframe(s string) (Timeframe, bool) {
	s = strings.TrimSpace(s)
	for i, info := range timeframeInfo {
		if info.label == s {
			return Timeframe(i), true
		}
	}
	return TF1h, false
}
