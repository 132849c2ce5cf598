package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coin.ID != "bitcoin" || cfg.StartCoin().Symbol != "btc" {
		t.Fatalf("default coin = %+v", cfg.Coin)
	}
	if cfg.StartTimeframe() != model.TF1h {
		t.Fatalf("default timeframe = %v", cfg.StartTimeframe())
	}
	if !cfg.StartIndicators().Equal(indicator.NewSet(indicator.KindSMA, indicator.KindRSI)) {
		t.Fatalf("default indicators = %v", cfg.View.Indicators)
	}
	if cfg.View.TickInterval != 100*time.Millisecond || cfg.Binance.ReconnectDelay != time.Second {
		t.Fatalf("tick=%v reconnect=%v", cfg.View.TickInterval, cfg.Binance.ReconnectDelay)
	}
	if cfg.View.Width != 100 || cfg.View.Height != 24 {
		t.Fatalf("canvas %dx%d", cfg.View.Width, cfg.View.Height)
	}
	if cfg.RedisAddr != "" || cfg.MetricsAddr != "" {
		t.Fatal("redis and metrics are disabled by default")
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
coin:
  id: ethereum
  symbol: ETH
  name: Ethereum
view:
  timeframe: 4h
  indicators: [ema, bb]
  tick_interval: 250ms
binance:
  reconnect_delay: 3s
redis_addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMEFRAME", "1d")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c := cfg.StartCoin(); c.ID != "ethereum" || c.Symbol != "eth" {
		t.Fatalf("coin = %+v", c)
	}
	if cfg.StartTimeframe() != model.TF1d {
		t.Fatalf("env should override timeframe, got %v", cfg.StartTimeframe())
	}
	if !cfg.StartIndicators().Equal(indicator.NewSet(indicator.KindEMA, indicator.KindBB)) {
		t.Fatalf("indicators = %v", cfg.View.Indicators)
	}
	if cfg.View.TickInterval != 250*time.Millisecond || cfg.Binance.ReconnectDelay != 3*time.Second {
		t.Fatalf("durations tick=%v reconnect=%v", cfg.View.TickInterval, cfg.Binance.ReconnectDelay)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Fatalf("redis addr = %q", cfg.RedisAddr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TIMEFRAME", "3h")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown timeframe")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("view: [unterminated"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	if got := getDuration("HTTP_TIMEOUT", 5*time.Second); got != 5*time.Second {
		t.Fatalf("got %v", got)
	}
}
