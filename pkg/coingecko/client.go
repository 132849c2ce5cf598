// Package coingecko wraps the public CoinGecko v3 endpoints the dashboard
// reads: coin list, market snapshots, trending coins and price history.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"cryptotracker/internal/model"
)

const (
	defaultRoot = "https://api.coingecko.com/api/v3"

	// unrankedRank is stored for coins from /coins/list, which carries no rank.
	unrankedRank = 999999

	// moversUniverse is how many top coins GainersLosers ranks.
	moversUniverse = 250
)

var routes = map[string]string{
	"coins.list":    "/coins/list",
	"coins.markets": "/coins/markets",
	"search.trend":  "/search/trending",
	"market.chart":  "/coins/%s/market_chart",
}

// Config holds client settings.
type Config struct {
	RootURL string
	Timeout time.Duration
}

// Client talks to the CoinGecko REST API.
type Client struct {
	rootURL    string
	httpClient *http.Client
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
	}
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	reqURL := c.rootURL + path
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
		return false, fmt.Errorf("coingecko %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("coingecko %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		// 429 is common on the free tier; callers treat it as "no data".
		log.Printf("[coingecko] %s returned %d", path, resp.StatusCode)
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("coingecko %s: couldn't parse JSON response: %w", path, err)
	}
	return true, nil
}

// CoinList returns every coin CoinGecko knows about, unranked.
func (c *Client) CoinList(ctx context.Context) ([]model.Coin, error) {
	var rows []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	ok, err := c.doRequest(ctx, routes["coins.list"], nil, &rows)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]model.Coin, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Coin{
			ID:     r.ID,
			Symbol: r.Symbol,
			Name:   r.Name,
			Rank:   unrankedRank,
			Source: "coingecko",
		})
	}
	return out, nil
}

type marketRow struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Rank      *int     `json:"market_cap_rank"`
	Price     *float64 `json:"current_price"`
	ChangePct *float64 `json:"price_change_percentage_24h"`
	Volume    *float64 `json:"total_volume"`
}

func (r marketRow) coin() model.MarketCoin {
	mc := model.MarketCoin{Coin: model.Coin{
		ID:     r.ID,
		Symbol: r.Symbol,
		Name:   r.Name,
		Rank:   unrankedRank,
		Source: "coingecko",
	}}
	if r.Rank != nil {
		mc.Rank = *r.Rank
	}
	if r.Price != nil {
		mc.Price = *r.Price
	}
	if r.ChangePct != nil {
		mc.ChangePct = *r.ChangePct
	}
	if r.Volume != nil {
		mc.Volume = *r.Volume
	}
	return mc
}

func (c *Client) markets(ctx context.Context, params url.Values) ([]model.MarketCoin, error) {
	params.Set("vs_currency", "usd")
	params.Set("page", "1")
	params.Set("sparkline", "false")

	var rows []marketRow
	ok, err := c.doRequest(ctx, routes["coins.markets"], params, &rows)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]model.MarketCoin, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.coin())
	}
	return out, nil
}

// TopCoins returns the top coins by market cap.
func (c *Client) TopCoins(ctx context.Context, limit int) ([]model.MarketCoin, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprint(limit))
	return c.markets(ctx, params)
}

// CoinsByIDs returns market snapshots for the given CoinGecko ids.
func (c *Client) CoinsByIDs(ctx context.Context, ids []string) ([]model.MarketCoin, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprint(len(ids)))
	return c.markets(ctx, params)
}

// Trending returns CoinGecko's trending search list.
func (c *Client) Trending(ctx context.Context) ([]model.MarketCoin, error) {
	var body struct {
		Coins []struct {
			Item struct {
				ID     string `json:"id"`
				Symbol string `json:"symbol"`
				Name   string `json:"name"`
				Rank   *int   `json:"market_cap_rank"`
				Data   struct {
					Price     float64            `json:"price"`
					ChangePct map[string]float64 `json:"price_change_percentage_24h"`
					Volume    json.RawMessage    `json:"total_volume"`
				} `json:"data"`
			} `json:"item"`
		} `json:"coins"`
	}
	ok, err := c.doRequest(ctx, routes["search.trend"], nil, &body)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]model.MarketCoin, 0, len(body.Coins))
	for _, e := range body.Coins {
		it := e.Item
		mc := model.MarketCoin{
			Coin: model.Coin{
				ID:     it.ID,
				Symbol: it.Symbol,
				Name:   it.Name,
				Rank:   unrankedRank,
				Source: "coingecko",
			},
			Price:     it.Data.Price,
			ChangePct: it.Data.ChangePct["usd"],
			Volume:    parseLooseNumber(it.Data.Volume),
		}
		if it.Rank != nil {
			mc.Rank = *it.Rank
		}
		out = append(out, mc)
	}
	return out, nil
}

// parseLooseNumber accepts a JSON number or a "$1,234.56" style string.
func parseLooseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return 0
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0
	}
	return f
}

// GainersLosers ranks the top 250 coins by 24h change and returns the n
// biggest risers and the n biggest fallers (worst first).
func (c *Client) GainersLosers(ctx context.Context, n int) (gainers, losers []model.MarketCoin, err error) {
	if n <= 0 {
		n = 15
	}
	all, err := c.TopCoins(ctx, moversUniverse)
	if err != nil || len(all) == 0 {
		return nil, nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ChangePct > all[j].ChangePct })

	k := min(n, len(all))
	gainers = append([]model.MarketCoin(nil), all[:k]...)
	losers = make([]model.MarketCoin, 0, k)
	for i := len(all) - 1; i >= len(all)-k; i-- {
		losers = append(losers, all[i])
	}
	return gainers, losers, nil
}

// MarketChart returns the USD price history of id over days ("1", "30",
// "max", ...) as price-only bars: open, high, low and close are equal and
// volume is zero.
func (c *Client) MarketChart(ctx context.Context, id, days string) (model.Series, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)

	var body struct {
		Prices [][2]float64 `json:"prices"`
	}
	ok, err := c.doRequest(ctx, fmt.Sprintf(routes["market.chart"], url.PathEscape(id)), params, &body)
	if err != nil || !ok {
		return nil, err
	}
	bars := make(model.Series, 0, len(body.Prices))
	for _, p := range body.Prices {
		bars = append(bars, model.Bar{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Open:  p[1],
			High:  p[1],
			Low:   p[1],
			Close: p[1],
		})
	}
	return bars, nil
}
