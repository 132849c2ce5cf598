package render

import (
	"math"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
)

// Downsample picks width indices evenly spaced over [0, n-1] with
// index = round(i*(n-1)/(width-1)). When n <= width every index is kept.
// The result is strictly increasing and always holds 0 and n-1.
func Downsample(n, width int) []int {
	if n <= 0 {
		return nil
	}
	if n <= width {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if width < 2 {
		return []int{n - 1}
	}
	idx := make([]int, width)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * float64(n-1) / float64(width-1)))
	}
	return idx
}

// Columns maps n plotted points onto a canvas of the given width. The last
// point lands on the rightmost column; a single point is centred.
func Columns(n, width int) []int {
	cols := make([]int, n)
	if n == 1 {
		cols[0] = (width - 1) / 2
		return cols
	}
	for i := range cols {
		cols[i] = int(float64(i) / float64(n-1) * float64(width-1))
	}
	return cols
}

// Scale maps prices onto canvas rows, row 0 being the lowest price.
type Scale struct {
	Min    float64
	Max    float64
	Height int
}

// padFraction is added to the price range at each end.
const padFraction = 0.05

// NewScale computes the vertical range of bars, extended to cover levels.
// Non-positive and non-finite prices are ignored. A degenerate range is
// widened to 1.
func NewScale(bars model.Series, levels []float64, height int) Scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		if indicator.Defined(b.Low) && b.Low > 0 && b.Low < lo {
			lo = b.Low
		}
		if indicator.Defined(b.High) && b.High > 0 && b.High > hi {
			hi = b.High
		}
	}
	if math.IsInf(lo, 1) {
		lo = 0
	}
	if math.IsInf(hi, -1) {
		hi = 100
	}
	for _, l := range levels {
		if !indicator.Defined(l) || l <= 0 {
			continue
		}
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}

	pad := (hi - lo) * padFraction
	lo = math.Max(0, lo-pad)
	hi += pad
	if hi-lo <= 0 {
		hi = lo + 1
	}
	return Scale{Min: lo, Max: hi, Height: height}
}

// Range is Max - Min, never zero.
func (s Scale) Range() float64 {
	if r := s.Max - s.Min; r > 0 {
		return r
	}
	return 1
}

// Row maps p to a canvas row. ok is false for absent or non-positive prices.
func (s Scale) Row(p float64) (row int, ok bool) {
	if !indicator.Defined(p) || p <= 0 {
		return 0, false
	}
	if s.Height <= 1 {
		return 0, true
	}
	r := int(math.Round((p - s.Min) / s.Range() * float64(s.Height-1)))
	if r < 0 {
		r = 0
	}
	if r > s.Height-1 {
		r = s.Height - 1
	}
	return r, true
}

// Price is the inverse of Row: the price a row represents.
func (s Scale) Price(row int) float64 {
	if s.Height <= 1 {
		return s.Min
	}
	return s.Min + float64(row)/float64(s.Height-1)*s.Range()
}

// widestSubDollar is the longest label a price below 1 can produce.
const widestSubDollar = len("0.000000")

// LabelWidth is the width of the price scale column beside any canvas of e,
// including the separating space. Downsampling only narrows the range, so
// every label of a rendered frame fits.
func LabelWidth(e indicator.Enriched, showLevels bool) int {
	scale := NewScale(e.Bars, levelValues(e, showLevels), 2)
	w := len(Price(scale.Max))
	if scale.Min < 1 {
		w = max(w, widestSubDollar)
	}
	return w + 1
}
