package render

import (
	"fmt"
	"strings"
)

// glyphHeight is the row count of every big-font glyph.
const glyphHeight = 5

var font = map[rune][glyphHeight]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	'.': {"     ", "     ", "     ", "     ", "  █  "},
	',': {"     ", "     ", "     ", "  █  ", " █   "},
	'$': {"  █  ", " ███ ", "█ █ █", " ███ ", "  █  "},
	'+': {"     ", "  █  ", "█████", "  █  ", "     "},
	'-': {"     ", "     ", "█████", "     ", "     "},
	'%': {"█   █", "   █ ", "  █  ", " █   ", "█   █"},
}

// BigText renders s in the 5x5 block font with spacing columns between
// glyphs. Unknown characters render as blanks.
func BigText(s string, spacing int) [glyphHeight]string {
	var rows [glyphHeight]strings.Builder
	gap := strings.Repeat(" ", spacing)
	for _, ch := range s {
		g, ok := font[ch]
		for i := 0; i < glyphHeight; i++ {
			if ok {
				rows[i].WriteString(g[i])
			} else {
				rows[i].WriteString("     ")
			}
			rows[i].WriteString(gap)
		}
	}
	var out [glyphHeight]string
	for i := range rows {
		out[i] = rows[i].String()
	}
	return out
}

// BigPriceText formats price for the big display. Precision shrinks as the
// price grows and falls back to two decimals if the text exceeds 14 chars.
func BigPriceText(price float64) string {
	var s string
	switch {
	case price >= 1000:
		s = "$" + priceWithDecimals(price, 2)
	case price >= 1:
		s = "$" + priceWithDecimals(price, 4)
	default:
		s = "$" + priceWithDecimals(price, 6)
	}
	if len(s) > 14 {
		s = "$" + priceWithDecimals(price, 2)
	}
	return s
}

// BigSpacing picks the gap between glyphs so longer prices still fit.
func BigSpacing(text string) int {
	switch n := len(text); {
	case n > 10:
		return 1
	case n > 8:
		return 2
	default:
		return 3
	}
}

// Line is one centred line of a composed view.
type Line struct {
	Text  string
	Color Color
	Bold  bool
}

// BigPriceTitle is the caption of the big price panel.
const BigPriceTitle = "LIVE TICKER"

// BigPrice composes the big price view: symbol, price art, change badge.
func BigPrice(symbol string, price, changePct float64) []Line {
	trend := Green
	if changePct < 0 {
		trend = Red
	}
	text := BigPriceText(price)
	art := BigText(text, BigSpacing(text))

	lines := []Line{
		{Text: strings.ToUpper(symbol), Color: White, Bold: true},
		{},
	}
	for _, row := range art {
		lines = append(lines, Line{Text: row, Color: Cyan, Bold: true})
	}
	lines = append(lines,
		Line{},
		Line{Text: fmt.Sprintf(" %+.2f%% ", changePct), Color: trend, Bold: true},
		Line{},
		Line{Text: "[P] Standard View", Color: Dim},
	)
	return lines
}
