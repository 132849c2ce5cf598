// Package render turns an enriched bar series into a fixed-size character grid.
//
// Rendering is pure: the same Enriched and Options always produce the same
// Frame. Colours are symbolic; the terminal layer decides how to paint them.
package render

import (
	"strings"

	"cryptotracker/internal/indicator"
)

// Color is a symbolic cell colour.
type Color uint8

const (
	Default Color = iota
	Red
	Green
	Cyan
	Magenta
	Yellow
	Blue
	White
	Dim
)

var colorNames = [...]string{"default", "red", "green", "cyan", "magenta", "yellow", "blue", "white", "dim"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "default"
}

// Cell is one character of the canvas.
type Cell struct {
	Ch    rune
	Color Color
}

var blank = Cell{Ch: ' ', Color: Default}

// Style selects how the price itself is drawn.
type Style uint8

const (
	Candles Style = iota // wick + body per bar
	LineStyle            // close prices joined by vertical segments
)

// Options are immutable per Render call.
type Options struct {
	Width      int
	Height     int
	Title      string
	Indicators indicator.Set
	ShowLevels bool
	Style      Style
}

// Canvas defaults.
const (
	DefaultWidth  = 100
	DefaultHeight = 24
)

func (o Options) normalized() Options {
	if o.Width < 1 {
		o.Width = DefaultWidth
	}
	if o.Height < 1 {
		o.Height = DefaultHeight
	}
	return o
}

// Placeholder is shown instead of a canvas for an empty series.
const Placeholder = "No data available"

// Span is a run of text drawn in one colour.
type Span struct {
	Text  string
	Color Color
	Bold  bool
}

// Frame is a rendered chart. Grid[r] is canvas row r, row 0 being the lowest
// price. Labels[r] holds the price annotation for even rows and "" otherwise.
type Frame struct {
	Header      []Span
	Grid        [][]Cell
	Labels      []string
	Placeholder string
	Scale       Scale
}

// Empty reports whether the frame is the no-data placeholder.
func (f Frame) Empty() bool { return f.Placeholder != "" }

// Width is the canvas width in columns.
func (f Frame) Width() int {
	if len(f.Grid) == 0 {
		return 0
	}
	return len(f.Grid[0])
}

// Height is the canvas height in rows.
func (f Frame) Height() int { return len(f.Grid) }

// String renders the frame as plain text, top row first, without colours.
func (f Frame) String() string {
	if f.Empty() {
		return f.Placeholder
	}
	var b strings.Builder
	for _, s := range f.Header {
		b.WriteString(s.Text)
	}
	b.WriteByte('\n')

	w := f.Width()
	b.WriteString("┌" + strings.Repeat("─", w) + "┐\n")
	for r := f.Height() - 1; r >= 0; r-- {
		b.WriteString("│")
		for _, c := range f.Grid[r] {
			b.WriteRune(c.Ch)
		}
		b.WriteString("│")
		if f.Labels[r] != "" {
			b.WriteString(" " + f.Labels[r])
		}
		b.WriteByte('\n')
	}
	b.WriteString("└" + strings.Repeat("─", w) + "┘")
	return b.String()
}
