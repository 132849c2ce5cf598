package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cryptotracker/internal/indicator"
	"cryptotracker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Coin struct {
		ID     string `yaml:"id"`
		Symbol string `yaml:"symbol"`
		Name   string `yaml:"name"`
	} `yaml:"coin"`

	View struct {
		Timeframe     string        `yaml:"timeframe"`
		Indicators    []string      `yaml:"indicators"`
		TickInterval  time.Duration `yaml:"tick_interval"`
		Width         int           `yaml:"width"`
		Height        int           `yaml:"height"`
		WatchlistSize int           `yaml:"watchlist_size"`
	} `yaml:"view"`

	Reload struct {
		Cron string `yaml:"cron"`
	} `yaml:"reload"`

	Binance struct {
		RESTURL        string        `yaml:"rest_url"`
		WSURL          string        `yaml:"ws_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		KlineLimit     int           `yaml:"kline_limit"`
	} `yaml:"binance"`

	CoinGecko struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"coingecko"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Infrastructure
	SQLitePath    string        `yaml:"sqlite_path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
	MetricsAddr   string        `yaml:"metrics_addr"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Load reads .env (if present), then the YAML file at path (a missing file is
// fine), then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Coin.ID = getEnv("COIN_ID", c.Coin.ID)
	c.Coin.Symbol = getEnv("COIN_SYMBOL", c.Coin.Symbol)
	c.Coin.Name = getEnv("COIN_NAME", c.Coin.Name)
	c.View.Timeframe = getEnv("TIMEFRAME", c.View.Timeframe)
	if v := os.Getenv("INDICATORS"); v != "" {
		c.View.Indicators = strings.Split(v, ",")
	}
	c.View.TickInterval = getDuration("TICK_INTERVAL", c.View.TickInterval)
	c.View.WatchlistSize = getInt("WATCHLIST_SIZE", c.View.WatchlistSize)
	c.Reload.Cron = getEnv("RELOAD_CRON", c.Reload.Cron)

	c.Binance.RESTURL = getEnv("BINANCE_REST_URL", c.Binance.RESTURL)
	c.Binance.WSURL = getEnv("BINANCE_WS_URL", c.Binance.WSURL)
	c.Binance.ReconnectDelay = getDuration("FEED_RECONNECT_DELAY", c.Binance.ReconnectDelay)
	c.CoinGecko.BaseURL = getEnv("COINGECKO_URL", c.CoinGecko.BaseURL)
	c.HTTPTimeout = getDuration("HTTP_TIMEOUT", c.HTTPTimeout)

	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisTTL = getDuration("REDIS_TTL", c.RedisTTL)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func (c *Config) applyDefaults() {
	if c.Coin.ID == "" {
		c.Coin.ID, c.Coin.Symbol, c.Coin.Name = "bitcoin", "btc", "Bitcoin"
	}
	if c.Coin.Symbol == "" {
		c.Coin.Symbol = c.Coin.ID
	}
	if c.Coin.Name == "" {
		c.Coin.Name = c.Coin.ID
	}
	if c.View.Timeframe == "" {
		c.View.Timeframe = "1h"
	}
	if c.View.Indicators == nil {
		c.View.Indicators = []string{"sma", "rsi"}
	}
	if c.View.TickInterval <= 0 {
		c.View.TickInterval = 100 * time.Millisecond
	}
	if c.View.Width <= 0 {
		c.View.Width = 100
	}
	if c.View.Height <= 0 {
		c.View.Height = 24
	}
	if c.View.WatchlistSize <= 0 {
		c.View.WatchlistSize = 15
	}
	if c.Reload.Cron == "" {
		c.Reload.Cron = "@every 60s"
	}
	if c.Binance.RESTURL == "" {
		c.Binance.RESTURL = "https://api.binance.com/api/v3"
	}
	if c.Binance.WSURL == "" {
		c.Binance.WSURL = "wss://stream.binance.com:9443/ws/!ticker@arr"
	}
	if c.Binance.ReconnectDelay <= 0 {
		c.Binance.ReconnectDelay = time.Second
	}
	if c.Binance.KlineLimit <= 0 {
		c.Binance.KlineLimit = 100
	}
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/crypto_cache.db"
	}
	if c.RedisTTL <= 0 {
		c.RedisTTL = time.Minute
	}
	if c.LogFile == "" {
		c.LogFile = "data/cryptotracker.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, ok := model.ParseTimeframe(c.View.Timeframe); !ok {
		return fmt.Errorf("invalid timeframe %q", c.View.Timeframe)
	}
	if _, err := indicator.ParseKinds(c.View.Indicators); err != nil {
		return fmt.Errorf("invalid indicators: %w", err)
	}
	return nil
}

// StartCoin is the coin shown at startup.
func (c *Config) StartCoin() model.Coin {
	return model.Coin{ID: c.Coin.ID, Symbol: strings.ToLower(c.Coin.Symbol), Name: c.Coin.Name, Source: "coingecko"}
}

// StartTimeframe is the timeframe shown at startup.
func (c *Config) StartTimeframe() model.Timeframe {
	tf, _ := model.ParseTimeframe(c.View.Timeframe)
	return tf
}

// StartIndicators is the initially active indicator set.
func (c *Config) StartIndicators() indicator.Set {
	s, err := indicator.ParseKinds(c.View.Indicators)
	if err != nil {
		return indicator.NewSet(indicator.KindSMA, indicator.KindRSI)
	}
	return s
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return d
}
