package indicator

import "math"

// SMA calculates Simple Moving Average over a rolling window.
// Uses a preallocated circular buffer with a running sum, O(1) per update.
// Non-finite prices stay out of the sum; the average is absent while one is
// inside the window.
type SMA struct {
	period int
	buf    []float64 // preallocated circular buffer
	idx    int       // current write position
	count  int       // total values received
	bad    int       // non-finite values in the window
	sum    float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return "SMA_" + itoaInd(s.period) }

func (s *SMA) Update(price float64) {
	if s.count >= s.period {
		// Subtract the oldest value being overwritten
		if old := s.buf[s.idx]; Defined(old) {
			s.sum -= old
		} else {
			s.bad--
		}
	}

	s.buf[s.idx] = price
	if Defined(price) {
		s.sum += price
	} else {
		s.bad++
	}
	s.idx = (s.idx + 1) % s.period
	s.count++
}

func (s *SMA) Value() float64 {
	if !s.Ready() || s.bad > 0 {
		return math.NaN()
	}
	return s.sum / float64(s.period)
}

func (s *SMA) Ready() bool { return s.count >= s.period }

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.idx = 0
	s.count = 0
	s.bad = 0
	s.sum = 0
	for i := range s.buf {
		s.buf[i] = 0
	}
}
