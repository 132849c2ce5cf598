package render

import (
	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
)

// overlayGlyph is the fixed glyph and colour of one indicator line.
type overlayGlyph struct {
	name  string
	kind  indicator.Kind
	glyph rune
	color Color
}

// overlays are drawn in this order; later entries win on shared cells.
var overlays = []overlayGlyph{
	{indicator.SMA50, indicator.KindSMA, '*', Cyan},
	{indicator.SMA200, indicator.KindSMA, '#', Magenta},
	{indicator.EMA9, indicator.KindEMA, '-', Yellow},
	{indicator.BBUpper, indicator.KindBB, '^', Blue},
	{indicator.BBLower, indicator.KindBB, 'v', Blue},
}

// levelLine is a horizontal reference line for one overlay level.
type levelLine struct {
	name  string
	glyph rune
	color Color
}

var levelLines = []levelLine{
	{indicator.LiqShort, '─', Red},
	{indicator.LiqLong, '─', Green},
	{indicator.BullOB, '=', Green},
	{indicator.BearOB, '=', Red},
}

// Render draws e onto a Width x Height canvas. Layers, bottom to top:
// level lines, indicator glyphs, then candles (or the close line).
func Render(e indicator.Enriched, opts Options) Frame {
	opts = opts.normalized()
	if e.Len() == 0 {
		return Frame{Placeholder: Placeholder}
	}

	idx := Downsample(e.Len(), opts.Width)
	bars := make(model.Series, len(idx))
	for i, j := range idx {
		bars[i] = e.Bars[j]
	}

	scale := NewScale(bars, levelValues(e, opts.ShowLevels), opts.Height)
	grid := newGrid(opts.Width, opts.Height)
	cols := Columns(len(bars), opts.Width)

	if opts.ShowLevels {
		drawLevels(grid, e, scale)
	}
	drawOverlays(grid, e, opts.Indicators, idx, cols, scale)
	if opts.Style == LineStyle {
		drawLine(grid, bars, cols, scale)
	} else {
		drawCandles(grid, bars, cols, scale)
	}

	return Frame{
		Header: header(opts.Title, bars),
		Grid:   grid,
		Labels: labels(scale),
		Scale:  scale,
	}
}

// levelValues returns the latest value of each level line when shown.
func levelValues(e indicator.Enriched, show bool) []float64 {
	if !show {
		return nil
	}
	var out []float64
	for _, l := range levelLines {
		if v, ok := e.Latest(l.name); ok {
			out = append(out, v)
		}
	}
	return out
}

func newGrid(w, h int) [][]Cell {
	grid := make([][]Cell, h)
	for r := range grid {
		row := make([]Cell, w)
		for c := range row {
			row[c] = blank
		}
		grid[r] = row
	}
	return grid
}

func drawLevels(grid [][]Cell, e indicator.Enriched, scale Scale) {
	for _, l := range levelLines {
		v, ok := e.Latest(l.name)
		if !ok {
			continue
		}
		r, ok := scale.Row(v)
		if !ok {
			continue
		}
		for c := range grid[r] {
			grid[r][c] = Cell{Ch: l.glyph, Color: l.color}
		}
	}
}

func drawOverlays(grid [][]Cell, e indicator.Enriched, active indicator.Set, idx, cols []int, scale Scale) {
	for _, o := range overlays {
		if !active.Has(o.kind) {
			continue
		}
		line, ok := e.Line(o.name)
		if !ok {
			continue
		}
		for i, j := range idx {
			r, ok := scale.Row(line[j])
			if !ok {
				continue
			}
			grid[r][cols[i]] = Cell{Ch: o.glyph, Color: o.color}
		}
	}
}

func drawCandles(grid [][]Cell, bars model.Series, cols []int, scale Scale) {
	for i, b := range bars {
		ro, ok1 := scale.Row(b.Open)
		rc, ok2 := scale.Row(b.Close)
		rh, ok3 := scale.Row(b.High)
		rl, ok4 := scale.Row(b.Low)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		color := Red
		if b.Bullish() {
			color = Green
		}
		col := cols[i]
		for r := rl; r <= rh; r++ {
			grid[r][col] = Cell{Ch: '│', Color: color}
		}
		lo, hi := ro, rc
		if lo > hi {
			lo, hi = hi, lo
		}
		for r := lo; r <= hi; r++ {
			grid[r][col] = Cell{Ch: '█', Color: color}
		}
	}
}

// drawLine plots each close as a dot and joins it to the previous close with
// a vertical run in its own column.
func drawLine(grid [][]Cell, bars model.Series, cols []int, scale Scale) {
	color := Green
	if len(bars) > 1 && bars[len(bars)-1].Close < bars[0].Close {
		color = Red
	}
	prev, havePrev := 0, false
	for i, b := range bars {
		r, ok := scale.Row(b.Close)
		if !ok {
			havePrev = false
			continue
		}
		col := cols[i]
		if havePrev {
			lo, hi := prev, r
			if lo > hi {
				lo, hi = hi, lo
			}
			for k := lo + 1; k < hi; k++ {
				grid[k][col] = Cell{Ch: '│', Color: color}
			}
		}
		grid[r][col] = Cell{Ch: '•', Color: color}
		prev, havePrev = r, true
	}
}

func header(title string, bars model.Series) []Span {
	last, _ := bars.Last()
	color := Red
	if last.Bullish() {
		color = Green
	}
	return []Span{
		{Text: title, Color: White, Bold: true},
		{Text: "  " + Dollars(last.Close), Color: color, Bold: true},
	}
}

// labels annotates every other row with the price it represents.
func labels(scale Scale) []string {
	out := make([]string, scale.Height)
	for r := range out {
		if r%2 == 0 {
			out[r] = Price(scale.Price(r))
		}
	}
	return out
}
