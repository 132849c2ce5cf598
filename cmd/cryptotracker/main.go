package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cryptotracker/config"
	"cryptotracker/internal/dashboard"
	"cryptotracker/internal/feed"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/metrics"
	"cryptotracker/internal/model"
	"cryptotracker/internal/ringbuf"
	"cryptotracker/internal/scheduler"
	"cryptotracker/internal/source"
	redisstore "cryptotracker/internal/store/redis"
	sqlitestore "cryptotracker/internal/store/sqlite"
	"cryptotracker/internal/tui"
	"cryptotracker/internal/view"
	"cryptotracker/pkg/binance"
	"cryptotracker/pkg/coingecko"
)

const keyQueueSize = 64

// Once logger.Init has moved the standard logger into the log file, fatal
// errors must also reach the terminal.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Print(msg)
	fmt.Fprintln(stderr, msg)
	exit(1)
}

func main() {
	cfgPath := getEnv("CONFIG_PATH", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[cryptotracker] config: %v", err)
	}

	// The terminal belongs to the dashboard; logs go to a file.
	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("[cryptotracker] %v", err)
	}
	defer logFile.Close()
	logger.Init("cryptotracker", logger.ParseLevel(cfg.LogLevel), logFile)
	log.Printf("[cryptotracker] starting (coin=%s tf=%s)", cfg.Coin.ID, cfg.View.Timeframe)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	// ---- SQLite coin store ----
	store, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		fatalf("[cryptotracker] sqlite init failed: %v", err)
	}
	defer store.Close()
	health.SetSQLiteOK(true)

	// ---- REST clients ----
	bn := binance.New(binance.Config{RootURL: cfg.Binance.RESTURL, Timeout: cfg.HTTPTimeout})
	cg := coingecko.New(coingecko.Config{RootURL: cfg.CoinGecko.BaseURL, Timeout: cfg.HTTPTimeout})

	history := source.NewHistory(bn, cg, cfg.Binance.KlineLimit)
	history.OnFetch = func(d time.Duration, bars int) {
		prom.UpstreamDur.Observe(d.Seconds())
	}
	var bars model.BarSource = history

	// ---- Redis bar cache (optional) ----
	var pinger metrics.Pinger
	if cfg.RedisAddr != "" {
		cache, err := redisstore.New(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			log.Printf("[cryptotracker] WARNING: redis init failed: %v (continuing without cache)", err)
		} else {
			defer cache.Close()
			cb := cache.Breaker()
			logTransition := cb.OnStateChange
			cb.OnStateChange = func(from, to redisstore.State) {
				logTransition(from, to)
				prom.SetBreakerState(int(to))
			}
			cache.OnHit = prom.CacheHits.Inc
			cache.OnMiss = prom.CacheMisses.Inc
			bars = source.NewCached(history, cache, cfg.RedisTTL)
			pinger = cache
			health.SetRedisEnabled(true)
		}
	}
	health.StartLivenessChecker(ctx, pinger, store.DB(), 10*time.Second)

	// ---- Live ticker stream ----
	slot := feed.NewSlot()
	stream, err := feed.NewStream(feed.Config{URL: cfg.Binance.WSURL, ReconnectDelay: cfg.Binance.ReconnectDelay}, slot)
	if err != nil {
		fatalf("[cryptotracker] feed init failed: %v", err)
	}
	stream.OnTicks = func(n int) {
		prom.TicksTotal.Add(float64(n))
		health.SetLastTickTime(time.Now())
	}
	stream.OnReconnect = prom.WSReconnects.Inc
	stream.OnConnect = func(up bool) {
		health.SetWSConnected(up)
		if up {
			prom.WSConnected.Set(1)
		} else {
			prom.WSConnected.Set(0)
		}
	}

	// ---- Refresh loop ----
	keys := ringbuf.NewKeyQueue(keyQueueSize)
	state := view.New(cfg.StartCoin(), cfg.StartTimeframe(), cfg.StartIndicators())
	loop := dashboard.New(dashboard.Deps{
		Bars:    bars,
		Coins:   store,
		Market:  cg,
		Keys:    keys,
		Prices:  slot,
		Catalog: cg,
		Pairs:   history,
		Metrics: prom,
		Health:  health,
	}, dashboard.Config{
		Width:         cfg.View.Width,
		Height:        cfg.View.Height,
		WatchlistSize: cfg.View.WatchlistSize,
	}, state)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := stream.Run(gctx); err != nil && !errors.Is(err, feed.ErrStopped) {
			return err
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, prom, health)
		g.Go(func() error {
			if err := srv.Run(gctx); err != nil {
				log.Printf("[cryptotracker] WARNING: metrics server: %v", err)
			}
			return nil
		})
	}

	loop.Bootstrap(gctx)

	// ---- Scheduled reloads ----
	sched := scheduler.New()
	if err := sched.Register("reload", cfg.Reload.Cron, loop.RequestReload); err != nil {
		fatalf("[cryptotracker] %v", err)
	}
	if err := sched.Register("watchlist", cfg.Reload.Cron, loop.RequestWatchlistReload); err != nil {
		fatalf("[cryptotracker] %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// ---- Terminal UI (owns the refresh loop goroutine) ----
	m := tui.New(gctx, loop, keys, cfg.View.TickInterval)
	m.OnKeyDropped = prom.KeysDropped.Inc
	g.Go(func() error {
		defer stop()
		defer stream.Stop()
		return tui.Run(gctx, m)
	})

	if err := g.Wait(); err != nil {
		fatalf("[cryptotracker] exited with error: %v", err)
	}
	log.Println("[cryptotracker] shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
