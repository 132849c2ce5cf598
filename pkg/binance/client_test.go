package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{RootURL: srv.URL, Timeout: 2 * time.Second})
}

func TestExchangeInfo_FiltersUSDTTrading(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchangeInfo" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"TRADING","quoteAsset":"BTC"},
			{"symbol":"LUNAUSDT","status":"BREAK","quoteAsset":"USDT"}]}`))
	})
	pairs, err := c.ExchangeInfo(context.Background())
	if err != nil {
		t.Fatalf("ExchangeInfo: %v", err)
	}
	if len(pairs) != 1 || pairs[0] != "BTCUSDT" {
		t.Fatalf("pairs = %v", pairs)
	}
}

func TestKlines_Parse(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "4h" || q.Get("limit") != "100" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[
			[1700000000000,"65000.10","65500.00","64800.50","65200.25","123.456",1700014399999,"0",10,"0","0","0"],
			[1700014400000,"bad","1","1","1","1",0],
			[1700014400000,"65200.25","65300.00","65100.00","65150.00","98.7",1700028799999,"0",5,"0","0","0"]]`))
	})
	bars, err := c.Klines(context.Background(), "BTCUSDT", "4h", 0)
	if err != nil {
		t.Fatalf("Klines: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 (malformed row skipped)", len(bars))
	}
	b := bars[0]
	if b.Open != 65000.10 || b.High != 65500 || b.Low != 64800.50 || b.Close != 65200.25 || b.Volume != 123.456 {
		t.Fatalf("bar = %+v", b)
	}
	if !b.Time.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("time = %v", b.Time)
	}
}

func TestKlines_Non200IsEmpty(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	})
	bars, err := c.Klines(context.Background(), "NOPEUSDT", "1h", 100)
	if err != nil || len(bars) != 0 {
		t.Fatalf("bars=%v err=%v, want empty and nil", bars, err)
	}
}

func TestKlines_TransportError(t *testing.T) {
	c := New(Config{RootURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})
	if _, err := c.Klines(context.Background(), "BTCUSDT", "1h", 10); err == nil {
		t.Fatal("expected transport error")
	}
}
