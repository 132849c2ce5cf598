package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{RootURL: srv.URL, Timeout: 2 * time.Second})
}

func TestCoinList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"ethereum","symbol":"eth","name":"Ethereum"}]`))
	})
	coins, err := c.CoinList(context.Background())
	if err != nil {
		t.Fatalf("CoinList: %v", err)
	}
	if len(coins) != 2 || coins[0].ID != "bitcoin" || coins[0].Rank != unrankedRank || coins[0].Source != "coingecko" {
		t.Fatalf("coins = %+v", coins)
	}
}

func TestTopCoins_QueryAndNulls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/coins/markets" || q.Get("vs_currency") != "usd" || q.Get("per_page") != "2" || q.Get("sparkline") != "false" {
			t.Errorf("request = %s", r.URL)
		}
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","market_cap_rank":1,"current_price":65000.5,"price_change_percentage_24h":2.5,"total_volume":1e10},
			{"id":"newcoin","symbol":"new","name":"New","market_cap_rank":null,"current_price":null,"price_change_percentage_24h":null,"total_volume":null}]`))
	})
	coins, err := c.TopCoins(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopCoins: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("len = %d", len(coins))
	}
	if coins[0].Rank != 1 || coins[0].Price != 65000.5 || coins[0].ChangePct != 2.5 {
		t.Fatalf("btc = %+v", coins[0])
	}
	if coins[1].Rank != unrankedRank || coins[1].Price != 0 {
		t.Fatalf("null fields not zeroed: %+v", coins[1])
	}
}

func TestCoinsByIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "bitcoin,solana" {
			t.Errorf("ids = %q", got)
		}
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"solana","symbol":"sol","name":"Solana"}]`))
	})
	coins, err := c.CoinsByIDs(context.Background(), []string{"bitcoin", "solana"})
	if err != nil || len(coins) != 2 {
		t.Fatalf("coins=%v err=%v", coins, err)
	}

	none, err := c.CoinsByIDs(context.Background(), nil)
	if err != nil || none != nil {
		t.Fatalf("empty ids: %v %v", none, err)
	}
}

func TestTrending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins":[{"item":{"id":"pepe","symbol":"PEPE","name":"Pepe","market_cap_rank":30,
			"data":{"price":0.0000123,"price_change_percentage_24h":{"usd":-4.2},"total_volume":"$1,234,567"}}}]}`))
	})
	coins, err := c.Trending(context.Background())
	if err != nil || len(coins) != 1 {
		t.Fatalf("coins=%v err=%v", coins, err)
	}
	got := coins[0]
	if got.ID != "pepe" || got.Rank != 30 || got.ChangePct != -4.2 || got.Volume != 1234567 {
		t.Fatalf("trending = %+v", got)
	}
}

func TestGainersLosers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") != "250" {
			t.Errorf("per_page = %s", r.URL.Query().Get("per_page"))
		}
		var rows []string
		for i, chg := range []float64{1, -8, 5, 0, -2, 12} {
			rows = append(rows, fmt.Sprintf(`{"id":"c%d","symbol":"c%d","name":"C%d","price_change_percentage_24h":%g}`, i, i, i, chg))
		}
		w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	})
	gainers, losers, err := c.GainersLosers(context.Background(), 2)
	if err != nil {
		t.Fatalf("GainersLosers: %v", err)
	}
	if len(gainers) != 2 || gainers[0].ChangePct != 12 || gainers[1].ChangePct != 5 {
		t.Fatalf("gainers = %+v", gainers)
	}
	if len(losers) != 2 || losers[0].ChangePct != -8 || losers[1].ChangePct != -2 {
		t.Fatalf("losers = %+v", losers)
	}
}

func TestMarketChart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/some-coin/market_chart" || r.URL.Query().Get("days") != "30" {
			t.Errorf("request = %s", r.URL)
		}
		w.Write([]byte(`{"prices":[[1700000000000,1.5],[1700003600000,1.75]],"total_volumes":[]}`))
	})
	bars, err := c.MarketChart(context.Background(), "some-coin", "30")
	if err != nil || len(bars) != 2 {
		t.Fatalf("bars=%v err=%v", bars, err)
	}
	b := bars[1]
	if b.Open != 1.75 || b.High != 1.75 || b.Low != 1.75 || b.Close != 1.75 || b.Volume != 0 {
		t.Fatalf("bar = %+v", b)
	}
}

func TestRateLimitedIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	bars, err := c.MarketChart(context.Background(), "bitcoin", "1")
	if err != nil || len(bars) != 0 {
		t.Fatalf("bars=%v err=%v", bars, err)
	}
}
