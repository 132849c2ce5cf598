// Package view holds the user-visible dashboard state and its key-driven
// transitions. State is owned by a single goroutine; nothing here locks.
package view

import (
	"strings"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
	"cryptotracker/internal/render"
)

// ChartMode selects how the chart area is drawn.
type ChartMode uint8

const (
	ChartBlock  ChartMode = iota // candle canvas
	ChartLine                    // close line canvas
	ChartHidden                  // big price in the chart area
)

func (m ChartMode) String() string {
	switch m {
	case ChartLine:
		return "line"
	case ChartHidden:
		return "hidden"
	default:
		return "block"
	}
}

// Overlay is a modal layer drawn over the dashboard that captures keys.
type Overlay uint8

const (
	OverlayNone Overlay = iota
	OverlaySearch
	OverlayIndicators
	OverlayMinutes
	OverlayHelp
)

// Sidebar selects the watchlist feed.
type Sidebar uint8

const (
	SidebarTop Sidebar = iota
	SidebarTrending
	SidebarGainers
	SidebarLosers
	SidebarFavorites
)

var sidebarNames = [...]string{"Top", "Trending", "Gainers", "Losers", "Favorites"}

func (s Sidebar) String() string {
	if int(s) < len(sidebarNames) {
		return sidebarNames[s]
	}
	return "Top"
}

// Layout limits.
const (
	MinRatio        = 1
	MinLevelsHeight = 3
	MaxLevelsHeight = 40
)

// Layout holds the resizable proportions of the screen.
type Layout struct {
	ChartRatio   int
	SidebarRatio int
	LevelsHeight int
}

// DefaultLayout is chart:sidebar 3:1 with a 4-row levels panel.
func DefaultLayout() Layout {
	return Layout{ChartRatio: 3, SidebarRatio: 1, LevelsHeight: 4}
}

// MaxSearchResults caps the result list of the search overlay.
const MaxSearchResults = 9

// State is the dashboard's view state for the process lifetime.
type State struct {
	Coin       model.Coin
	Timeframe  model.Timeframe
	Chart      ChartMode
	Indicators indicator.Set
	ShowLevels bool
	Layout     Layout
	BigPrice   bool
	Overlay    Overlay

	Sidebar   Sidebar
	Watchlist []model.MarketCoin

	Query   string
	Results []model.Coin
	Cursor  int

	LivePrice float64
	HasLive   bool
	Enriched  indicator.Enriched
	Loading   bool
	Favorite  bool

	lastVisible ChartMode
}

// New returns the initial state for coin and timeframe.
func New(coin model.Coin, tf model.Timeframe, inds indicator.Set) *State {
	if inds == nil {
		inds = indicator.NewSet(indicator.KindSMA, indicator.KindRSI)
	}
	return &State{
		Coin:        coin,
		Timeframe:   tf,
		Chart:       ChartBlock,
		Indicators:  inds.Clone(),
		Layout:      DefaultLayout(),
		Sidebar:     SidebarTop,
		lastVisible: ChartBlock,
	}
}

// Effect tells the caller which side effects a transition requires.
type Effect struct {
	Refetch         bool // symbol or timeframe changed
	ReloadWatchlist bool // sidebar feed changed
	ToggleFavorite  bool // current coin favourite flip
	Search          bool // query changed, results needed
	Quit            bool
}

// None reports whether the transition needs no side effect.
func (e Effect) None() bool {
	return !e.Refetch && !e.ReloadWatchlist && !e.ToggleFavorite && !e.Search && !e.Quit
}

// Commit installs a freshly computed series. A non-empty series resets the
// live price to its last close; an empty one keeps the previous live price.
func (s *State) Commit(e indicator.Enriched) {
	s.Enriched = e
	s.Loading = false
	if last, ok := e.Bars.Last(); ok {
		s.LivePrice = last.Close
		s.HasLive = true
	}
}

// SetLivePrice records a streamed price for the current coin.
func (s *State) SetLivePrice(p float64) {
	if p <= 0 {
		return
	}
	s.LivePrice = p
	s.HasLive = true
}

// SetResults replaces the search result list.
func (s *State) SetResults(coins []model.Coin) {
	if len(coins) > MaxSearchResults {
		coins = coins[:MaxSearchResults]
	}
	s.Results = coins
	if s.Cursor >= len(coins) {
		s.Cursor = 0
	}
}

// ChangePct is the live price relative to the last bar's open, in percent.
func (s *State) ChangePct() float64 {
	last, ok := s.Enriched.Bars.Last()
	if !ok || last.Open <= 0 || !s.HasLive {
		return 0
	}
	return (s.LivePrice - last.Open) / last.Open * 100
}

// Title is the chart caption, e.g. "BTC/USDT 1H".
func (s *State) Title() string {
	return strings.ToUpper(s.Coin.Symbol) + "/USDT " + strings.ToUpper(s.Timeframe.String())
}

// RenderOptions derives the canvas options for the current state.
func (s *State) RenderOptions(width, height int) render.Options {
	style := render.Candles
	if s.Chart == ChartLine {
		style = render.LineStyle
	}
	return render.Options{
		Width:      width,
		Height:     height,
		Title:      s.Title(),
		Indicators: s.Indicators.Clone(),
		ShowLevels: s.ShowLevels,
		Style:      style,
	}
}
