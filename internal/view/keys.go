package view

import (
	"strings"
	"unicode/utf8"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
)

var timeframeKeys = map[string]model.Timeframe{
	"h": model.TF1h,
	"4": model.TF4h,
	"d": model.TF1d,
	"w": model.TF1w,
	"y": model.TF1y,
}

var minuteKeys = map[string]model.Timeframe{
	"1": model.TF1m,
	"2": model.TF5m,
	"3": model.TF15m,
	"4": model.TF30m,
}

var indicatorKeys = map[string]indicator.Kind{
	"1": indicator.KindSMA,
	"2": indicator.KindEMA,
	"3": indicator.KindBB,
	"4": indicator.KindRSI,
	"5": indicator.KindMACD,
}

var sidebarKeys = map[string]Sidebar{
	"r": SidebarTop,
	"t": SidebarTrending,
	"g": SidebarGainers,
	"l": SidebarLosers,
	"v": SidebarFavorites,
}

// Apply runs the transition for one key press and reports the side effects
// the caller must perform. Keys use the terminal's names ("esc", "enter",
// "backspace", "ctrl+c") or the literal character.
func (s *State) Apply(key string) Effect {
	if key == "ctrl+c" {
		return Effect{Quit: true}
	}
	switch s.Overlay {
	case OverlaySearch:
		return s.applySearch(key)
	case OverlayIndicators:
		return s.applyIndicatorMenu(key)
	case OverlayMinutes:
		return s.applyMinuteMenu(key)
	case OverlayHelp:
		s.Overlay = OverlayNone
		return Effect{}
	}
	return s.applyStandard(key)
}

func (s *State) applyStandard(key string) Effect {
	// Month is the only case-sensitive binding; "m" opens the minute menu.
	if key == "M" {
		return s.setTimeframe(model.TF1M)
	}
	if key == "m" {
		s.Overlay = OverlayMinutes
		return Effect{}
	}

	k := strings.ToLower(key)
	switch k {
	case "q":
		return Effect{Quit: true}
	case "s":
		s.Overlay = OverlaySearch
		s.Query = ""
		s.Results = nil
		s.Cursor = 0
		return Effect{Search: true}
	case "?", "'":
		s.Overlay = OverlayHelp
		return Effect{}
	case "i":
		s.Overlay = OverlayIndicators
		return Effect{}
	case "<", ",":
		if s.Layout.SidebarRatio > MinRatio {
			s.Layout.SidebarRatio--
			s.Layout.ChartRatio++
		}
		return Effect{}
	case ">", ".":
		if s.Layout.ChartRatio > MinRatio {
			s.Layout.SidebarRatio++
			s.Layout.ChartRatio--
		}
		return Effect{}
	case "[":
		if s.Layout.LevelsHeight > MinLevelsHeight {
			s.Layout.LevelsHeight--
		}
		return Effect{}
	case "]":
		if s.Layout.LevelsHeight < MaxLevelsHeight {
			s.Layout.LevelsHeight++
		}
		return Effect{}
	case "o":
		s.ShowLevels = !s.ShowLevels
		return Effect{}
	case "f":
		return Effect{ToggleFavorite: true}
	case "c":
		s.Chart = (s.Chart + 1) % 3
		if s.Chart != ChartHidden {
			s.lastVisible = s.Chart
		}
		return Effect{}
	case "x":
		if s.Chart == ChartHidden {
			s.Chart = s.lastVisible
		} else {
			s.lastVisible = s.Chart
			s.Chart = ChartHidden
		}
		return Effect{}
	case "p":
		s.BigPrice = !s.BigPrice
		return Effect{}
	}

	if sb, ok := sidebarKeys[k]; ok {
		s.Sidebar = sb
		return Effect{ReloadWatchlist: true}
	}
	if n, ok := digit(k); ok && n >= 1 && n <= len(s.Watchlist) {
		return s.selectCoin(s.Watchlist[n-1].Coin)
	}
	if tf, ok := timeframeKeys[k]; ok {
		return s.setTimeframe(tf)
	}
	return Effect{}
}

func (s *State) applySearch(key string) Effect {
	switch key {
	case "esc":
		s.Overlay = OverlayNone
		return Effect{}
	case "enter":
		s.Overlay = OverlayNone
		if s.Cursor < len(s.Results) {
			return s.selectCoin(s.Results[s.Cursor])
		}
		return Effect{}
	case "up":
		if s.Cursor > 0 {
			s.Cursor--
		}
		return Effect{}
	case "down":
		if s.Cursor < len(s.Results)-1 {
			s.Cursor++
		}
		return Effect{}
	case "backspace":
		if s.Query == "" {
			return Effect{}
		}
		_, size := utf8.DecodeLastRuneInString(s.Query)
		s.Query = s.Query[:len(s.Query)-size]
		s.Cursor = 0
		return Effect{Search: true}
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) != 1 {
		return Effect{}
	}
	s.Query += key
	s.Cursor = 0
	return Effect{Search: true}
}

func (s *State) applyIndicatorMenu(key string) Effect {
	s.Overlay = OverlayNone
	if key == "0" {
		s.Indicators = indicator.NewSet()
		return Effect{}
	}
	if k, ok := indicatorKeys[key]; ok {
		s.Indicators.Toggle(k)
	}
	return Effect{}
}

func (s *State) applyMinuteMenu(key string) Effect {
	s.Overlay = OverlayNone
	if tf, ok := minuteKeys[key]; ok {
		return s.setTimeframe(tf)
	}
	return Effect{}
}

func (s *State) selectCoin(c model.Coin) Effect {
	s.Coin = c
	s.Loading = true
	return Effect{Refetch: true}
}

func (s *State) setTimeframe(tf model.Timeframe) Effect {
	s.Timeframe = tf
	s.Loading = true
	return Effect{Refetch: true}
}

func digit(k string) (int, bool) {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0, false
	}
	return int(k[0] - '0'), true
}
