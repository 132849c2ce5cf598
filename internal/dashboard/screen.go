package dashboard

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
	"cryptotracker/internal/render"
	"cryptotracker/internal/view"
)

// AppTitle heads the screen.
const AppTitle = "UNIVERSAL CRYPTO TRACKER"

// NoChartMessage replaces the chart while there is nothing to draw.
const NoChartMessage = "Loading Chart or Data Unavailable..."

// Controls is the footer line.
const Controls = "[S] Search  [1-9] Select  [H,4,D,W,M,Y] TF  [m] Min TF  [I] Ind Menu  [O] Liq/OB  [F] Fav  " +
	"[T] Trend  [G] Gain  [L] Lose  [V] Favs  [C] Chart Mode  [X] Hide Chart  [P] Big Price  " +
	"[<,>] Resize Sidebar  [[,]] Resize Levels  [?] Help  [Q] Quit"

// Fixed rows around the canvas: app header, info bar and footer outside
// the chart; frame header and two borders inside it.
const (
	chromeRows = 3
	frameRows  = 3
	borderCols = 2
	minCanvasW = 10
	minCanvasH = 5
)

// CanvasSize derives the chart canvas size from the terminal size, the
// layout ratios and the width of the price label column.
func CanvasSize(termW, termH int, layout view.Layout, showLevels bool, labelCols int) (w, h int) {
	total := layout.ChartRatio + layout.SidebarRatio
	if total <= 0 {
		total = 1
	}
	w = termW*layout.ChartRatio/total - borderCols - labelCols
	h = termH - chromeRows - frameRows
	if showLevels {
		h -= layout.LevelsHeight
	}
	return max(w, minCanvasW), max(h, minCanvasH)
}

// SidebarRow is one formatted watchlist entry.
type SidebarRow struct {
	Index  int // 1-based, as selected with the digit keys
	Symbol string
	Price  string
	Change string
	Volume string
	Color  render.Color
}

// Screen is everything the terminal needs to paint one frame.
type Screen struct {
	Header []render.Span
	Info   []render.Span

	// FullBig replaces the whole screen with Big.
	FullBig bool
	Big     []render.Line

	ChartMode view.ChartMode
	Chart     render.Frame
	Message   string // non-empty when there is no chart to draw

	ShowLevels   bool
	LevelsTitle  string
	Levels       []render.Span
	LevelsHeight int

	Layout       view.Layout
	SidebarTitle string
	Sidebar      []SidebarRow

	Footer string

	Overlay      view.Overlay
	OverlayTitle string
	OverlayLines []render.Line
}

// Compose builds the Screen for s with an already rendered chart frame.
func Compose(s *view.State, frame render.Frame) Screen {
	sc := Screen{
		Header:       header(s),
		Info:         infoBar(s),
		ChartMode:    s.Chart,
		Chart:        frame,
		Layout:       s.Layout,
		LevelsHeight: s.Layout.LevelsHeight,
		SidebarTitle: "Watchlist - " + s.Sidebar.String(),
		Sidebar:      sidebarRows(s.Watchlist),
		Footer:       Controls,
		Overlay:      s.Overlay,
	}

	if s.BigPrice || s.Chart == view.ChartHidden {
		sc.Big = render.BigPrice(s.Coin.Symbol, s.LivePrice, s.ChangePct())
		sc.FullBig = s.BigPrice
	} else if frame.Empty() || s.Enriched.Len() == 0 {
		sc.Message = NoChartMessage
	}

	if s.ShowLevels {
		if panel, ok := render.Levels(s.Enriched); ok {
			sc.ShowLevels = true
			sc.LevelsTitle = render.PanelTitle
			sc.Levels = panel.Spans()
		}
	}

	sc.OverlayTitle, sc.OverlayLines = overlay(s)
	return sc
}

func header(s *view.State) []render.Span {
	out := []render.Span{
		{Text: AppTitle, Color: render.White, Bold: true},
		{Text: " | " + s.Coin.Name + " (" + strings.ToUpper(s.Coin.Symbol) + ")", Color: render.White},
	}
	if s.HasLive {
		out = append(out, render.Span{Text: " | " + render.Dollars(s.LivePrice), Color: render.White, Bold: true})
		chg := s.ChangePct()
		c := render.Green
		if chg < 0 {
			c = render.Red
		}
		out = append(out, render.Span{Text: fmt.Sprintf(" %+.2f%%", chg), Color: c})
	}
	if s.Favorite {
		out = append(out, render.Span{Text: " ★", Color: render.Yellow})
	}
	if s.Loading {
		out = append(out, render.Span{Text: "  loading...", Color: render.Dim})
	}
	return out
}

func infoBar(s *view.State) []render.Span {
	high, low, vol := s.Enriched.Bars.Stats()
	rank := "N/A"
	if s.Coin.Rank > 0 && s.Coin.Rank < 999999 {
		rank = fmt.Sprintf("#%d", s.Coin.Rank)
	}

	inds := s.Indicators.String()
	if inds == "" {
		inds = "None"
	}
	if s.ShowLevels {
		inds += ",LIQ/OB"
	}

	text := fmt.Sprintf("Price: %s | Rank: %s | High: %s | Low: %s | Vol: %s | TF: %s | Inds: %s",
		render.Dollars(s.LivePrice), rank, render.Dollars(high), render.Dollars(low),
		humanize.Comma(int64(vol)), strings.ToUpper(s.Timeframe.String()), inds)
	out := []render.Span{{Text: text}}

	if s.Indicators.Has(indicator.KindRSI) {
		if v, ok := s.Enriched.Latest(indicator.RSI14); ok {
			c := render.Default
			switch {
			case v >= 70:
				c = render.Red
			case v <= 30:
				c = render.Green
			}
			out = append(out, render.Span{Text: fmt.Sprintf(" | RSI: %.1f", v), Color: c})
		}
	}
	if s.Indicators.Has(indicator.KindMACD) {
		if h, ok := s.Enriched.Latest(indicator.MACDHist); ok {
			c := render.Green
			if h < 0 {
				c = render.Red
			}
			out = append(out, render.Span{Text: " | MACD hist: " + render.Price(h), Color: c})
		}
	}
	return out
}

func sidebarRows(coins []model.MarketCoin) []SidebarRow {
	rows := make([]SidebarRow, 0, len(coins))
	for i, c := range coins {
		color := render.Green
		if c.ChangePct < 0 {
			color = render.Red
		}
		rows = append(rows, SidebarRow{
			Index:  i + 1,
			Symbol: strings.ToUpper(c.Symbol),
			Price:  render.Dollars(c.Price),
			Change: fmt.Sprintf("%+.2f%%", c.ChangePct),
			Volume: compactVolume(c.Volume),
			Color:  color,
		})
	}
	return rows
}

// compactVolume prints "$1.23B" above a billion and "$4.56M" otherwise.
func compactVolume(v float64) string {
	if v > 1e9 {
		return fmt.Sprintf("$%.2fB", v/1e9)
	}
	return fmt.Sprintf("$%.2fM", v/1e6)
}

type helpRow struct{ key, action, category string }

var helpRows = []helpRow{
	{"S", "Search for Coin", "Nav"},
	{"1-9", "Select from Watchlist", "Nav"},
	{"Q", "Quit Application", "Nav"},
	{"H, 4, D", "1h, 4h, 1d Timeframes", "Data"},
	{"W, M, Y", "1w, 1mo, 1y Timeframes", "Data"},
	{"m", "Minute Timeframes (1,5,15,30)", "Data"},
	{"< / >", "Resize Watchlist (Sidebar)", "Size"},
	{"[ / ]", "Resize Levels Panel", "Size"},
	{"I", "Indicators Menu", "Tools"},
	{"O", "Toggle Liq/OB Levels", "Tools"},
	{"C", "Cycle Chart Mode (Block/Line/Hidden)", "Tools"},
	{"X", "Toggle Chart Visibility", "Tools"},
	{"P", "Big Price Ticker Mode", "Tools"},
	{"F", "Favorite Current Coin", "List"},
	{"V", "View Favorites", "List"},
	{"T", "View Trending", "List"},
	{"G/L", "View Gainers/Losers", "List"},
	{"R", "View Top Coins", "List"},
}

var indicatorMenu = []struct {
	key  string
	kind indicator.Kind
	name string
}{
	{"1", indicator.KindSMA, "SMA 50/200"},
	{"2", indicator.KindEMA, "EMA 9/20"},
	{"3", indicator.KindBB, "Bollinger Bands (BB)"},
	{"4", indicator.KindRSI, "RSI 14"},
	{"5", indicator.KindMACD, "MACD 12/26/9"},
}

func overlay(s *view.State) (string, []render.Line) {
	switch s.Overlay {
	case view.OverlayHelp:
		lines := make([]render.Line, 0, len(helpRows)+2)
		for _, r := range helpRows {
			lines = append(lines, render.Line{Text: fmt.Sprintf("%-8s %-38s %s", r.key, r.action, r.category)})
		}
		lines = append(lines, render.Line{}, render.Line{Text: "Press any key to return...", Color: render.Dim})
		return "Help & Controls", lines

	case view.OverlayIndicators:
		active := s.Indicators.String()
		if active == "" {
			active = "None"
		}
		lines := []render.Line{{Text: "Current Active: " + active, Color: render.Yellow}, {}}
		for _, m := range indicatorMenu {
			mark := "[ ]"
			if s.Indicators.Has(m.kind) {
				mark = "[x]"
			}
			lines = append(lines, render.Line{Text: m.key + ". " + mark + " " + m.name})
		}
		lines = append(lines, render.Line{Text: "0. Clear All"}, render.Line{}, render.Line{Text: "Any other key to return", Color: render.Dim})
		return "Indicator Menu", lines

	case view.OverlayMinutes:
		return "Minute Timeframes", []render.Line{
			{Text: "1. 1 Minute"},
			{Text: "2. 5 Minutes"},
			{Text: "3. 15 Minutes"},
			{Text: "4. 30 Minutes"},
			{},
			{Text: "Any other key to cancel", Color: render.Dim},
		}

	case view.OverlaySearch:
		lines := []render.Line{{Text: "Search coin: " + s.Query + "_", Bold: true}, {}}
		if s.Query != "" && len(s.Results) == 0 {
			lines = append(lines, render.Line{Text: "No matches", Color: render.Dim})
		}
		for i, c := range s.Results {
			ln := render.Line{Text: "  " + c.Label()}
			if i == s.Cursor {
				ln = render.Line{Text: "> " + c.Label(), Color: render.Cyan, Bold: true}
			}
			lines = append(lines, ln)
		}
		lines = append(lines, render.Line{}, render.Line{Text: "Up/Down to move, Enter to select, Esc to cancel", Color: render.Dim})
		return "Search", lines
	}
	return "", nil
}
