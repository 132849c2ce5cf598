package indicator

import "math"

// EMA calculates Exponential Moving Average with smoothing factor 2/(span+1).
// The first price seeds the average, so every update yields a value.
// O(1) per update; no window storage.
type EMA struct {
	period     int
	multiplier float64
	current    float64
	count      int
}

// NewEMA creates a new EMA indicator with the given span.
func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return "EMA_" + itoaInd(e.period) }

func (e *EMA) Update(price float64) {
	e.count++
	if e.count == 1 {
		e.current = price
		return
	}
	// EMA = (Price * multiplier) + (EMA_prev * (1 - multiplier))
	e.current = (price * e.multiplier) + (e.current * (1 - e.multiplier))
}

func (e *EMA) Value() float64 {
	if e.count == 0 {
		return math.NaN()
	}
	return e.current
}

func (e *EMA) Ready() bool { return e.count > 0 }

// Reset clears the EMA state for reuse.
func (e *EMA) Reset() {
	e.current = 0
	e.count = 0
}
