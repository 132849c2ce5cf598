// Package dashboard is the refresh loop: it applies key presses to the view
// state, merges streamed prices, recomputes indicators and the chart frame
// when their inputs change, and composes the Screen the terminal paints.
package dashboard

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/metrics"
	"cryptotracker/internal/model"
	"cryptotracker/internal/render"
	"cryptotracker/internal/view"
)

// PriceSource is the latest-wins price slot filled by the feed.
type PriceSource interface {
	Latest(symbol string) (model.Tick, uint64, bool)
}

// CoinLister loads the full coin catalogue for the first run.
type CoinLister interface {
	CoinList(ctx context.Context) ([]model.Coin, error)
}

// PairLoader refreshes the set of exchange pairs with real candles.
type PairLoader interface {
	LoadPairs(ctx context.Context) (int, error)
}

// Deps are the loop's collaborators. Catalog, Pairs, Metrics and Health
// are optional.
type Deps struct {
	Bars    model.BarSource
	Coins   model.CoinStore
	Market  model.MarketSource
	Keys    model.KeySource
	Prices  PriceSource
	Catalog CoinLister
	Pairs   PairLoader
	Metrics *metrics.Metrics
	Health  *metrics.HealthStatus
}

// Config tunes the loop.
type Config struct {
	Width         int // fallback canvas width before the terminal size is known
	Height        int // fallback canvas height
	WatchlistSize int
	TopRanked     int // coins whose rank is refreshed on first run
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = render.DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = render.DefaultHeight
	}
	if c.WatchlistSize <= 0 {
		c.WatchlistSize = 15
	}
	if c.TopRanked <= 0 {
		c.TopRanked = 250
	}
}

// StepResult reports what one Step did.
type StepResult struct {
	Quit       bool
	Key        string // key applied this step, "" if none
	Refetched  bool
	Recomputed bool // indicators recomputed
	Rendered   bool // chart frame rebuilt
}

// frameKey identifies the inputs of the last rendered frame.
type frameKey struct {
	gen        uint64
	width      int
	height     int
	title      string
	kinds      string
	showLevels bool
	style      render.Style
}

// Loop owns the view state. Step, Bootstrap and Screen must be called from
// one goroutine; RequestReload and RequestWatchlistReload are safe from any.
type Loop struct {
	deps  Deps
	cfg   Config
	state *view.State
	log   *slog.Logger

	bars model.Series
	gen  uint64 // bumped on every committed series

	lastSymbol string
	lastSeq    uint64

	frame    render.Frame
	rendered frameKey
	screen   Screen

	termW, termH int

	reload          atomic.Bool
	reloadWatchlist atomic.Bool
}

// New creates a loop over state.
func New(deps Deps, cfg Config, state *view.State) *Loop {
	cfg.defaults()
	return &Loop{
		deps:  deps,
		cfg:   cfg,
		state: state,
		log:   logger.Component("dashboard"),
	}
}

// State exposes the view state for tests and the painter.
func (l *Loop) State() *view.State { return l.state }

// Screen returns the last composed screen.
func (l *Loop) Screen() Screen { return l.screen }

// Resize records the terminal size in cells.
func (l *Loop) Resize(width, height int) {
	l.termW, l.termH = width, height
}

// RequestReload asks the next Step to refetch the current series.
func (l *Loop) RequestReload() { l.reload.Store(true) }

// RequestWatchlistReload asks the next Step to refresh the sidebar.
func (l *Loop) RequestWatchlistReload() { l.reloadWatchlist.Store(true) }

// Bootstrap fills the coin store on first run, loads the exchange pairs,
// then performs the first series and sidebar load. Failures are logged;
// the dashboard starts with whatever succeeded.
func (l *Loop) Bootstrap(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.seedCoins(gctx)
		return nil
	})
	if l.deps.Pairs != nil {
		g.Go(func() error {
			n, err := l.deps.Pairs.LoadPairs(gctx)
			if err != nil {
				l.log.Warn("load exchange pairs failed", slog.String("error", err.Error()))
				return nil
			}
			l.log.Info("exchange pairs loaded", slog.Int("pairs", n))
			return nil
		})
	}
	g.Wait()

	l.refetch(ctx, "startup")
	l.loadWatchlist(ctx)
	l.refreshFavorite()
	l.Step(ctx)
}

func (l *Loop) seedCoins(ctx context.Context) {
	if l.deps.Catalog == nil {
		return
	}
	empty, err := l.deps.Coins.IsEmpty()
	if err != nil {
		l.log.Warn("coin store check failed", slog.String("error", err.Error()))
		return
	}
	if !empty {
		return
	}

	coins, err := l.deps.Catalog.CoinList(ctx)
	if err != nil {
		l.log.Warn("coin list fetch failed", slog.String("error", err.Error()))
		return
	}
	if err := l.deps.Coins.SaveCoins(coins); err != nil {
		l.log.Warn("coin list save failed", slog.String("error", err.Error()))
		return
	}

	// The full list carries no ranks; overwrite the top of it with ranked rows.
	top, err := l.deps.Market.TopCoins(ctx, l.cfg.TopRanked)
	if err != nil {
		l.log.Warn("top coins fetch failed", slog.String("error", err.Error()))
	}
	ranked := make([]model.Coin, 0, len(top))
	for _, mc := range top {
		ranked = append(ranked, mc.Coin)
	}
	if err := l.deps.Coins.SaveCoins(ranked); err != nil {
		l.log.Warn("ranked coins save failed", slog.String("error", err.Error()))
	}
	l.log.Info("coin store seeded", slog.Int("coins", len(coins)), slog.Int("ranked", len(ranked)))
}

// Step runs one tick of the refresh loop: apply at most one key, merge the
// latest streamed price, recompute what changed and compose the screen.
func (l *Loop) Step(ctx context.Context) StepResult {
	var res StepResult

	if l.deps.Keys != nil {
		if key, ok := l.deps.Keys.NextKey(); ok {
			res.Key = key
			eff := l.state.Apply(key)
			if eff.Quit {
				res.Quit = true
				return res
			}
			res.Refetched = l.perform(ctx, eff)
		}
	}

	if l.reload.CompareAndSwap(true, false) && !res.Refetched {
		l.refetch(ctx, "schedule")
		res.Refetched = true
	}
	if l.reloadWatchlist.CompareAndSwap(true, false) {
		l.loadWatchlist(ctx)
	}

	l.mergeTick()

	if !l.state.Enriched.Kinds.Equal(l.state.Indicators) {
		l.state.Enriched = indicator.Compute(l.bars, l.state.Indicators)
		res.Recomputed = true
	}

	res.Rendered = l.renderIfChanged()
	l.screen = Compose(l.state, l.frame)
	return res
}

// perform carries out a transition's side effects and reports whether the
// series was refetched.
func (l *Loop) perform(ctx context.Context, eff view.Effect) bool {
	if eff.Search {
		l.search()
	}
	if eff.ToggleFavorite {
		l.toggleFavorite()
	}
	if eff.ReloadWatchlist {
		l.loadWatchlist(ctx)
	}
	if eff.Refetch {
		l.refetch(ctx, "key")
		l.refreshFavorite()
		return true
	}
	return false
}

// refetch blocks until the historical source answers and commits the result.
// An empty result still commits, so the chart shows the placeholder rather
// than the previous coin's candles.
func (l *Loop) refetch(ctx context.Context, trigger string) {
	coin, tf := l.state.Coin, l.state.Timeframe
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(coin.PairSymbol(), time.Now()))
	l.state.Loading = true

	start := time.Now()
	bars := l.deps.Bars.FetchBars(ctx, coin, tf)
	took := time.Since(start)

	l.bars = bars
	l.gen++
	l.state.Commit(indicator.Compute(bars, l.state.Indicators))

	if m := l.deps.Metrics; m != nil {
		m.RefetchDur.Observe(took.Seconds())
		m.RefetchesTotal.WithLabelValues(trigger).Inc()
		if len(bars) == 0 {
			m.RefetchEmpty.Inc()
		}
	}
	if l.deps.Health != nil {
		l.deps.Health.SetRefetch(time.Now(), len(bars))
	}
	l.log.Info("series reloaded", append(logger.LogWithTrace(ctx),
		slog.String("trigger", trigger),
		slog.String("coin", coin.ID),
		slog.String("tf", tf.String()),
		slog.Int("bars", len(bars)),
		slog.Duration("took", took),
	)...)
}

// mergeTick copies the latest streamed price for the current pair into the
// view state. Ticks for other pairs are never read.
func (l *Loop) mergeTick() {
	if l.deps.Prices == nil {
		return
	}
	symbol := l.state.Coin.PairSymbol()
	if symbol != l.lastSymbol {
		l.lastSymbol = symbol
		l.lastSeq = 0
	}
	tick, seq, ok := l.deps.Prices.Latest(symbol)
	if !ok || seq == l.lastSeq {
		return
	}
	l.lastSeq = seq
	l.state.SetLivePrice(tick.Price)
}

func (l *Loop) renderIfChanged() bool {
	w, h := l.canvasSize()
	opts := l.state.RenderOptions(w, h)
	key := frameKey{
		gen:        l.gen,
		width:      opts.Width,
		height:     opts.Height,
		title:      opts.Title,
		kinds:      opts.Indicators.String(),
		showLevels: opts.ShowLevels,
		style:      opts.Style,
	}
	if key == l.rendered {
		return false
	}

	start := time.Now()
	l.frame = render.Render(l.state.Enriched, opts)
	l.rendered = key
	if m := l.deps.Metrics; m != nil {
		m.FrameDur.Observe(time.Since(start).Seconds())
		m.FramesTotal.Inc()
	}
	return true
}

func (l *Loop) canvasSize() (int, int) {
	if l.termW <= 0 || l.termH <= 0 {
		return l.cfg.Width, l.cfg.Height
	}
	labelW := render.LabelWidth(l.state.Enriched, l.state.ShowLevels)
	return CanvasSize(l.termW, l.termH, l.state.Layout, l.state.ShowLevels, labelW)
}

func (l *Loop) loadWatchlist(ctx context.Context) {
	var (
		coins []model.MarketCoin
		err   error
		n     = l.cfg.WatchlistSize
		mode  = l.state.Sidebar
	)
	switch mode {
	case view.SidebarTrending:
		coins, err = l.deps.Market.Trending(ctx)
	case view.SidebarGainers, view.SidebarLosers:
		var gainers, losers []model.MarketCoin
		gainers, losers, err = l.deps.Market.GainersLosers(ctx, n)
		coins = gainers
		if mode == view.SidebarLosers {
			coins = losers
		}
	case view.SidebarFavorites:
		var ids []string
		ids, err = l.deps.Coins.ListFavorites()
		if err == nil && len(ids) > 0 {
			coins, err = l.deps.Market.CoinsByIDs(ctx, ids)
		}
	default:
		coins, err = l.deps.Market.TopCoins(ctx, n)
	}
	if err != nil {
		l.log.Warn("watchlist load failed", slog.String("mode", mode.String()), slog.String("error", err.Error()))
		return
	}
	l.state.Watchlist = coins
	if m := l.deps.Metrics; m != nil {
		m.WatchlistLoads.WithLabelValues(mode.String()).Inc()
	}
}

func (l *Loop) search() {
	if l.state.Query == "" {
		l.state.SetResults(nil)
		return
	}
	coins, err := l.deps.Coins.Search(l.state.Query)
	if err != nil {
		l.log.Warn("search failed", slog.String("query", l.state.Query), slog.String("error", err.Error()))
		return
	}
	l.state.SetResults(coins)
}

func (l *Loop) toggleFavorite() {
	id := l.state.Coin.ID
	favs, err := l.deps.Coins.ListFavorites()
	if err != nil {
		l.log.Warn("favorites read failed", slog.String("error", err.Error()))
		return
	}
	if slices.Contains(favs, id) {
		err = l.deps.Coins.RemoveFavorite(id)
	} else {
		err = l.deps.Coins.AddFavorite(id)
	}
	if err != nil {
		l.log.Warn("favorite toggle failed", slog.String("coin", id), slog.String("error", err.Error()))
		return
	}
	l.state.Favorite = !slices.Contains(favs, id)
	if l.state.Sidebar == view.SidebarFavorites {
		l.RequestWatchlistReload()
	}
}

func (l *Loop) refreshFavorite() {
	favs, err := l.deps.Coins.ListFavorites()
	if err != nil {
		return
	}
	l.state.Favorite = slices.Contains(favs, l.state.Coin.ID)
}
