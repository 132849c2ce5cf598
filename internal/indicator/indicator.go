// Package indicator derives overlay series from a bar series.
//
// The streaming building blocks (SMA, EMA, RSI, rolling windows) implement the
// Indicator interface and are fed one close at a time. Compute runs them over a
// whole model.Series and returns an Enriched series whose overlay lines are
// aligned index-for-index with the bars. Absent values are NaN.
package indicator

import "math"

// Indicator is the interface for streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_50", "EMA_9").
	Name() string

	// Update feeds the next close price and recalculates.
	Update(price float64)

	// Value returns the current value. Returns NaN until Ready.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}

// Line is an overlay series aligned with the bars it was computed from.
// NaN marks an index where the value is absent.
type Line []float64

// Defined reports whether v is a usable value.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// newLine returns a line of length n with every value absent.
func newLine(n int) Line {
	l := make(Line, n)
	for i := range l {
		l[i] = math.NaN()
	}
	return l
}

// Last returns the last defined value of the line.
func (l Line) Last() (float64, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if Defined(l[i]) {
			return l[i], true
		}
	}
	return 0, false
}

// run feeds every price into ind and records Value once it is Ready.
func run(ind Indicator, prices []float64) Line {
	out := newLine(len(prices))
	for i, p := range prices {
		ind.Update(p)
		if ind.Ready() {
			out[i] = ind.Value()
		}
	}
	return out
}

// itoaInd converts int to string without importing strconv.
func itoaInd(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
