package render

import "cryptotracker/internal/indicator"

// LevelsPanel holds the latest named overlay levels. A zero value means the
// level is absent.
type LevelsPanel struct {
	LiqShort float64
	BearOB   float64
	BullOB   float64
	LiqLong  float64
}

// PanelTitle is the caption of the levels panel.
const PanelTitle = "Model Key Levels"

// Levels reads the latest level values from e. ok is false when no level
// has a positive value.
func Levels(e indicator.Enriched) (LevelsPanel, bool) {
	var p LevelsPanel
	get := func(name string) float64 {
		if v, ok := e.Latest(name); ok && v > 0 {
			return v
		}
		return 0
	}
	p.LiqShort = get(indicator.LiqShort)
	p.BearOB = get(indicator.BearOB)
	p.BullOB = get(indicator.BullOB)
	p.LiqLong = get(indicator.LiqLong)
	ok := p.LiqShort > 0 || p.BearOB > 0 || p.BullOB > 0 || p.LiqLong > 0
	return p, ok
}

// Spans lays the panel out resistance first (red), then a separator, then
// support (green).
func (p LevelsPanel) Spans() []Span {
	var out []Span
	if p.LiqShort > 0 {
		out = append(out, Span{Text: " Liq Short: " + Dollars(p.LiqShort) + " ", Color: Red, Bold: true}, Span{Text: "  "})
	}
	if p.BearOB > 0 {
		out = append(out, Span{Text: " Bear OB: " + Dollars(p.BearOB) + " ", Color: Red}, Span{Text: "  "})
	}
	out = append(out, Span{Text: " | ", Color: Yellow, Bold: true}, Span{Text: "  "})
	if p.BullOB > 0 {
		out = append(out, Span{Text: " Bull OB: " + Dollars(p.BullOB) + " ", Color: Green}, Span{Text: "  "})
	}
	if p.LiqLong > 0 {
		out = append(out, Span{Text: " Liq Long: " + Dollars(p.LiqLong) + " ", Color: Green, Bold: true})
	}
	return out
}
