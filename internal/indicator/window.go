package indicator

import "math"

// Window keeps a running sum and sum of squares over the trailing period values.
// Mean and sample standard deviation are O(1) per update. Values are stored
// shifted by the first finite value pushed so flat windows of large prices
// stay exact. Non-finite values are kept out of the sums and make the window
// absent until they slide out.
type Window struct {
	period  int
	buf     []float64 // shifted values, NaN for non-finite input
	idx     int
	count   int
	bad     int
	shifted bool
	shift   float64
	sum     float64
	sumSq   float64
}

// NewWindow creates a trailing window of the given size.
func NewWindow(period int) *Window {
	if period < 1 {
		period = 1
	}
	return &Window{period: period, buf: make([]float64, period)}
}

// Push adds v, evicting the oldest value once the window is full.
func (w *Window) Push(v float64) {
	if w.count >= w.period {
		if old := w.buf[w.idx]; Defined(old) {
			w.sum -= old
			w.sumSq -= old * old
		} else {
			w.bad--
		}
	}
	if Defined(v) {
		if !w.shifted {
			w.shift, w.shifted = v, true
		}
		v -= w.shift
		w.sum += v
		w.sumSq += v * v
	} else {
		v = math.NaN()
		w.bad++
	}
	w.buf[w.idx] = v
	w.idx = (w.idx + 1) % w.period
	w.count++
}

// Full reports whether period values have been pushed and all of them are
// finite.
func (w *Window) Full() bool { return w.count >= w.period && w.bad == 0 }

// Mean of the window, NaN until full.
func (w *Window) Mean() float64 {
	if !w.Full() {
		return math.NaN()
	}
	return w.shift + w.sum/float64(w.period)
}

// StdDev is the sample standard deviation (n-1 denominator), NaN until full.
func (w *Window) StdDev() float64 {
	if !w.Full() {
		return math.NaN()
	}
	if w.period < 2 {
		return 0
	}
	n := float64(w.period)
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		// rounding on a flat window
		variance = 0
	}
	return math.Sqrt(variance)
}

// Extremum tracks the rolling maximum (or minimum) of the trailing period
// values with a monotonic deque of indices. Amortised O(1) per update.
type Extremum struct {
	period int
	max    bool
	vals   []float64 // deque values, monotonic
	idxs   []int     // deque positions
	count  int
}

// NewRollingMax returns an Extremum that tracks the trailing maximum.
func NewRollingMax(period int) *Extremum { return newExtremum(period, true) }

// NewRollingMin returns an Extremum that tracks the trailing minimum.
func NewRollingMin(period int) *Extremum { return newExtremum(period, false) }

func newExtremum(period int, max bool) *Extremum {
	if period < 1 {
		period = 1
	}
	return &Extremum{
		period: period,
		max:    max,
		vals:   make([]float64, 0, period),
		idxs:   make([]int, 0, period),
	}
}

// Push adds v as the newest value. A non-finite v takes a slot in the window
// but never becomes the extremum.
func (e *Extremum) Push(v float64) {
	if !Defined(v) {
		e.count++
		e.evict()
		return
	}
	for n := len(e.vals); n > 0; n = len(e.vals) {
		tail := e.vals[n-1]
		if (e.max && tail > v) || (!e.max && tail < v) {
			break
		}
		e.vals = e.vals[:n-1]
		e.idxs = e.idxs[:n-1]
	}
	e.vals = append(e.vals, v)
	e.idxs = append(e.idxs, e.count)
	e.count++
	e.evict()
}

// evict drops the head once it has slid out of the window.
func (e *Extremum) evict() {
	oldest := e.count - e.period
	if len(e.idxs) > 0 && e.idxs[0] < oldest {
		e.vals = e.vals[1:]
		e.idxs = e.idxs[1:]
	}
}

// Ready reports whether period values have been pushed.
func (e *Extremum) Ready() bool { return e.count >= e.period }

// Value returns the current extremum, NaN until Ready or while the window
// holds no finite value.
func (e *Extremum) Value() float64 {
	if !e.Ready() || len(e.vals) == 0 {
		return math.NaN()
	}
	return e.vals[0]
}
