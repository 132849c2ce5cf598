package indicator

import "math"

// Bollinger computes bands at mean ± k·stddev over a trailing window.
type Bollinger struct {
	period int
	k      float64
	win    *Window
}

// NewBollinger creates Bollinger Bands with the given window and multiplier.
func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{period: period, k: k, win: NewWindow(period)}
}

func (b *Bollinger) Name() string { return "BB_" + itoaInd(b.period) }

func (b *Bollinger) Update(price float64) { b.win.Push(price) }

// Value is the middle band.
func (b *Bollinger) Value() float64 { return b.win.Mean() }

func (b *Bollinger) Ready() bool { return b.win.Full() }

// Bands returns the upper and lower band, NaN until Ready.
func (b *Bollinger) Bands() (upper, lower float64) {
	if !b.Ready() {
		return math.NaN(), math.NaN()
	}
	mid := b.win.Mean()
	dev := b.k * b.win.StdDev()
	return mid + dev, mid - dev
}
