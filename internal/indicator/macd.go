package indicator

import "math"

// MACD is the difference of a fast and slow EMA with an EMA signal line.
// All three components are defined from the first price on; early values
// are low confidence until the slow EMA has converged.
type MACD struct {
	fast, slow, signal *EMA
	line               float64
	count              int
}

// NewMACD creates a MACD with the given fast, slow and signal spans (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: NewEMA(fast), slow: NewEMA(slow), signal: NewEMA(signal)}
}

func (m *MACD) Name() string { return "MACD" }

func (m *MACD) Update(price float64) {
	m.fast.Update(price)
	m.slow.Update(price)
	m.line = m.fast.Value() - m.slow.Value()
	m.signal.Update(m.line)
	m.count++
}

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	return m.line
}

func (m *MACD) Ready() bool { return m.count > 0 }

// Signal returns the signal line.
func (m *MACD) Signal() float64 { return m.signal.Value() }

// Histogram returns MACD minus signal.
func (m *MACD) Histogram() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	return m.line - m.signal.Value()
}
