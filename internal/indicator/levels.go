package indicator

import (
	"math"

	"cryptotracker/internal/model"
)

// OrderBlocks detects bullish and bearish order blocks and forward-fills them.
//
// Bar i in [lookback, n-2) is a displacement candle when its body exceeds the
// previous bar's full high-low range. A bullish displacement preceded by a
// bearish bar marks that bar's open as a bullish block at i; the bearish case
// is symmetric. Once marked, a level carries forward until the next detection.
func OrderBlocks(bars model.Series, lookback int) (bull, bear Line) {
	n := len(bars)
	bull, bear = newLine(n), newLine(n)

	for i := lookback; i < n-2; i++ {
		if i < 1 {
			continue
		}
		cur, prev := bars[i], bars[i-1]
		prevRange := prev.High - prev.Low

		if cur.Close > cur.Open && cur.Close-cur.Open > prevRange && prev.Close < prev.Open {
			bull[i] = prev.Open
		}
		if cur.Close < cur.Open && cur.Open-cur.Close > prevRange && prev.Close > prev.Open {
			bear[i] = prev.Open
		}
	}

	forwardFill(bull)
	forwardFill(bear)
	return bull, bear
}

// forwardFill replaces every absent value after the first defined one with
// the most recent defined value.
func forwardFill(l Line) {
	last := math.NaN()
	for i, v := range l {
		if Defined(v) {
			last = v
			continue
		}
		l[i] = last
	}
}

// LiquidationLevels returns the trailing max of highs (short liquidations sit
// above) and the trailing min of lows (long liquidations sit below).
func LiquidationLevels(bars model.Series, window int) (short, long Line) {
	n := len(bars)
	short, long = newLine(n), newLine(n)
	hi, lo := NewRollingMax(window), NewRollingMin(window)
	for i, b := range bars {
		hi.Push(b.High)
		lo.Push(b.Low)
		if hi.Ready() {
			short[i] = hi.Value()
			long[i] = lo.Value()
		}
	}
	return short, long
}
