package indicator

import "math"

// RSI calculates the Relative Strength Index with Wilder smoothing (alpha = 1/period).
//
// The first price contributes a zero gain and a zero loss, which seeds both
// averages; every later price folds its close-to-close delta in recursively.
// A value is emitted once period prices have been observed.
// Update is O(1) per price.
type RSI struct {
	period    int
	alpha     float64
	count     int // prices seen
	prevClose float64
	avgGain   float64
	avgLoss   float64
}

// NewRSI creates a new RSI indicator with the given period (typically 14).
func NewRSI(period int) *RSI {
	if period < 1 {
		period = 1
	}
	return &RSI{period: period, alpha: 1.0 / float64(period)}
}

func (r *RSI) Name() string { return "RSI_" + itoaInd(r.period) }

func (r *RSI) Update(price float64) {
	r.count++

	if r.count == 1 {
		// First price: no delta yet
		r.prevClose = price
		r.avgGain = 0
		r.avgLoss = 0
		return
	}

	delta := price - r.prevClose
	r.prevClose = price

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else if delta < 0 {
		loss = -delta
	}

	// Wilder's smoothing: avg = alpha*x + (1-alpha)*avg
	r.avgGain = r.alpha*gain + (1-r.alpha)*r.avgGain
	r.avgLoss = r.alpha*loss + (1-r.alpha)*r.avgLoss
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return math.NaN()
	}
	return rsiFrom(r.avgGain, r.avgLoss)
}

func (r *RSI) Ready() bool { return r.count >= r.period }

// Reset clears the RSI state for reuse.
func (r *RSI) Reset() {
	r.count = 0
	r.prevClose = 0
	r.avgGain = 0
	r.avgLoss = 0
}

// rsiFrom maps smoothed averages to [0,100]. No losses saturates at 100;
// a flat market with neither gains nor losses sits at 50.
func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	v := 100.0 - (100.0 / (1.0 + rs))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
