// Package binance is a minimal client for Binance's public spot REST API:
// exchange info and klines. No authentication is needed.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptotracker/internal/model"
)

const defaultRoot = "https://api.binance.com/api/v3"

var routes = map[string]string{
	"exchange.info": "/exchangeInfo",
	"klines":        "/klines",
	"ticker.24hr":   "/ticker/24hr",
}

// Config holds client settings.
type Config struct {
	RootURL string
	Timeout time.Duration
	Debug   bool
}

// Client talks to the Binance REST API.
type Client struct {
	rootURL    string
	httpClient *http.Client
	debug      bool
}

// New creates a client, filling defaults for empty fields.
func New(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		rootURL:    strings.TrimRight(cfg.RootURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		debug:      cfg.Debug,
	}
}

// doRequest GETs route with params and decodes a 200 JSON body into out.
// A non-200 status is logged and reported as ok=false without an error.
func (c *Client) doRequest(ctx context.Context, route string, params url.Values, out any) (bool, error) {
	uri, ok := routes[route]
	if !ok {
		return false, fmt.Errorf("unknown route: %s", route)
	}
	reqURL := c.rootURL + uri
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("binance %s: %w", route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("binance %s: read body: %w", route, err)
	}
	if c.debug {
		log.Printf("[binance] %s code=%d bytes=%d", reqURL, resp.StatusCode, len(raw))
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[binance] %s returned %d", route, resp.StatusCode)
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("binance %s: couldn't parse JSON response: %w", route, err)
	}
	return true, nil
}

type symbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	QuoteAsset string `json:"quoteAsset"`
}

// ExchangeInfo returns every USDT-quoted pair currently trading.
func (c *Client) ExchangeInfo(ctx context.Context) ([]string, error) {
	var body struct {
		Symbols []symbolInfo `json:"symbols"`
	}
	ok, err := c.doRequest(ctx, "exchange.info", nil, &body)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]string, 0, len(body.Symbols))
	for _, s := range body.Symbols {
		if s.QuoteAsset == "USDT" && s.Status == "TRADING" {
			out = append(out, s.Symbol)
		}
	}
	return out, nil
}

// Klines fetches up to limit candles for symbol at interval (e.g. "1h", "1M").
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", fmt.Sprint(limit))

	var rows [][]json.RawMessage
	ok, err := c.doRequest(ctx, "klines", params, &rows)
	if err != nil || !ok {
		return nil, err
	}

	bars := make(model.Series, 0, len(rows))
	for _, row := range rows {
		b, err := parseKline(row)
		if err != nil {
			log.Printf("[binance] skipping kline for %s: %v", symbol, err)
			continue
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// parseKline decodes [openTime, open, high, low, close, volume, ...].
func parseKline(row []json.RawMessage) (model.Bar, error) {
	if len(row) < 6 {
		return model.Bar{}, fmt.Errorf("kline has %d fields", len(row))
	}
	var openMs int64
	if err := json.Unmarshal(row[0], &openMs); err != nil {
		return model.Bar{}, fmt.Errorf("open time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i], _ = d.Float64()
	}
	return model.Bar{
		Time:   time.UnixMilli(openMs).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
