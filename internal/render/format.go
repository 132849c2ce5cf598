package render

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Price formats p with thousands separators and two decimals ("65,432.10").
// Sub-dollar prices keep six decimals so they stay readable.
func Price(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	if p != 0 && math.Abs(p) < 1 {
		return humanize.FormatFloat("#,###.######", p)
	}
	return humanize.FormatFloat("#,###.##", p)
}

// priceWithDecimals formats p with an explicit number of decimals (2, 4 or 6).
func priceWithDecimals(p float64, decimals int) string {
	switch decimals {
	case 4:
		return humanize.FormatFloat("#,###.####", p)
	case 6:
		return humanize.FormatFloat("#,###.######", p)
	default:
		return humanize.FormatFloat("#,###.##", p)
	}
}

// Dollars prefixes Price with "$".
func Dollars(p float64) string { return "$" + Price(p) }
