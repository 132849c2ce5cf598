package indicator

import (
	"fmt"
	"sort"
	"strings"

	"cryptotracker/internal/model"
)

// Kind identifies a user-toggleable group of overlay lines.
type Kind string

const (
	KindSMA  Kind = "sma"
	KindEMA  Kind = "ema"
	KindBB   Kind = "bb"
	KindMACD Kind = "macd"
	KindRSI  Kind = "rsi"
)

// Overlay and level line names.
const (
	SMA50      = "SMA_50"
	SMA200     = "SMA_200"
	EMA9       = "EMA_9"
	EMA20      = "EMA_20"
	BBUpper    = "BBU_20_2"
	BBLower    = "BBL_20_2"
	MACDLine   = "MACD"
	MACDSignal = "MACD_SIGNAL"
	MACDHist   = "MACD_HIST"
	RSI14      = "RSI_14"
	BullOB     = "BULL_OB"
	BearOB     = "BEAR_OB"
	LiqShort   = "LIQ_SHORT"
	LiqLong    = "LIQ_LONG"
)

const (
	// MinBars is the number of bars a series needs before overlays are computed.
	MinBars = 51

	OrderBlockLookback = 5
	LiquidationWindow  = 20
)

// IndicatorConfig specifies a single streaming indicator line to compute.
type IndicatorConfig struct {
	Type   string // "SMA", "EMA", "RSI"
	Period int
}

// lineConfigs are the single-line overlays produced by each kind.
var lineConfigs = map[Kind][]IndicatorConfig{
	KindSMA: {{Type: "SMA", Period: 50}, {Type: "SMA", Period: 200}},
	KindEMA: {{Type: "EMA", Period: 9}, {Type: "EMA", Period: 20}},
	KindRSI: {{Type: "RSI", Period: 14}},
}

// AllKinds lists every toggleable kind in menu order.
var AllKinds = []Kind{KindSMA, KindEMA, KindBB, KindRSI, KindMACD}

// Set is the set of active indicator kinds.
type Set map[Kind]bool

// NewSet returns a set holding kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Has reports membership.
func (s Set) Has(k Kind) bool { return s[k] }

// Toggle adds k if absent and removes it if present.
func (s Set) Toggle(k Kind) {
	if s[k] {
		delete(s, k)
		return
	}
	s[k] = true
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k, v := range s {
		if v {
			c[k] = true
		}
	}
	return c
}

// Equal reports whether both sets hold the same kinds.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o[k] {
			return false
		}
	}
	return true
}

// Sorted returns the kinds in stable order.
func (s Set) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Sorted() {
		parts = append(parts, strings.ToUpper(string(k)))
	}
	return strings.Join(parts, ", ")
}

// ParseKinds validates indicator names from configuration.
func ParseKinds(names []string) (Set, error) {
	s := make(Set, len(names))
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		switch k {
		case KindSMA, KindEMA, KindBB, KindMACD, KindRSI:
			s[k] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown indicator kind %q", n)
		}
	}
	return s, nil
}

// Enriched is a bar series plus overlay lines aligned index-for-index.
type Enriched struct {
	Bars  model.Series
	Lines map[string]Line
	Kinds Set
}

// Len returns the number of bars.
func (e Enriched) Len() int { return len(e.Bars) }

// Line returns the named overlay line.
func (e Enriched) Line(name string) (Line, bool) {
	l, ok := e.Lines[name]
	return l, ok
}

// Latest returns the last defined value of the named line.
func (e Enriched) Latest(name string) (float64, bool) {
	l, ok := e.Lines[name]
	if !ok {
		return 0, false
	}
	return l.Last()
}

// Compute derives overlay lines for the requested kinds. Order blocks and
// liquidation levels are always present; the toggleable overlays need at
// least MinBars bars. The input series is never modified.
func Compute(bars model.Series, kinds Set) Enriched {
	e := Enriched{
		Bars:  bars,
		Lines: make(map[string]Line, 14),
		Kinds: kinds.Clone(),
	}
	if len(bars) == 0 {
		return e
	}

	e.Lines[BullOB], e.Lines[BearOB] = OrderBlocks(bars, OrderBlockLookback)
	e.Lines[LiqShort], e.Lines[LiqLong] = LiquidationLevels(bars, LiquidationWindow)

	if len(bars) < MinBars {
		return e
	}

	closes := bars.Closes()
	for _, k := range kinds.Sorted() {
		for _, ic := range lineConfigs[k] {
			ind := newIndicator(ic)
			e.Lines[ind.Name()] = run(ind, closes)
		}
		switch k {
		case KindBB:
			e.Lines[BBUpper], e.Lines[BBLower] = bollingerLines(closes)
		case KindMACD:
			e.Lines[MACDLine], e.Lines[MACDSignal], e.Lines[MACDHist] = macdLines(closes)
		}
	}
	return e
}

func newIndicator(ic IndicatorConfig) Indicator {
	switch ic.Type {
	case "EMA":
		return NewEMA(ic.Period)
	case "RSI":
		return NewRSI(ic.Period)
	default:
		return NewSMA(ic.Period)
	}
}

func bollingerLines(closes []float64) (upper, lower Line) {
	upper, lower = newLine(len(closes)), newLine(len(closes))
	bb := NewBollinger(20, 2)
	for i, c := range closes {
		bb.Update(c)
		if bb.Ready() {
			upper[i], lower[i] = bb.Bands()
		}
	}
	return upper, lower
}

func macdLines(closes []float64) (line, signal, hist Line) {
	n := len(closes)
	line, signal, hist = newLine(n), newLine(n), newLine(n)
	m := NewMACD(12, 26, 9)
	for i, c := range closes {
		m.Update(c)
		line[i] = m.Value()
		signal[i] = m.Signal()
		hist[i] = m.Histogram()
	}
	return line, signal, hist
}
