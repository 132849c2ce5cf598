package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"cryptotracker/internal/model"
)

// DefaultURL is Binance's all-market mini ticker stream.
const DefaultURL = "wss://stream.binance.com:9443/ws/!ticker@arr"

// Config holds configuration for the ticker stream.
type Config struct {
	// URL of the ticker WebSocket, e.g. DefaultURL.
	URL string

	// ReconnectDelay is the fixed delay between reconnection attempts.
	// Defaults to 1 second if zero.
	ReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = time.Second
	}
}

// ErrStopped is returned by Run when Stop was called before it started.
var ErrStopped = errors.New("feed: stream stopped")

// Stream connects to the ticker WebSocket and writes every ticker it receives
// into a Slot. It reconnects after any unexpected close until Stop is called
// or the context ends.
type Stream struct {
	cfg  Config
	slot *Slot

	running   atomic.Bool
	stopped   atomic.Bool
	connected atomic.Bool

	mu   sync.Mutex
	conn *websocket.Conn

	// Optional hooks, set before Run.
	OnReconnect func()
	OnTicks     func(n int)
	OnConnect   func(up bool)
}

// NewStream creates a Stream that writes into slot. Returns an error if the
// URL is unparseable.
func NewStream(cfg Config, slot *Slot) (*Stream, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("feed url: %w", err)
	}
	return &Stream{cfg: cfg, slot: slot}, nil
}

// Run streams tickers until ctx is cancelled or Stop is called.
// The running flag is checked before every connection attempt.
func (s *Stream) Run(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrStopped
	}
	s.running.Store(true)
	defer s.running.Store(false)

	for s.active() {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := s.runOnce(ctx)
		if err == nil || !s.active() {
			// Context cancelled or stopped cleanly
			return nil
		}

		log.Printf("[feed] disconnected (%v), reconnecting in %s...", err, s.cfg.ReconnectDelay)
		if s.OnReconnect != nil {
			s.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
	return nil
}

// Stop prevents further reconnects and closes the active connection.
func (s *Stream) Stop() {
	s.stopped.Store(true)
	s.running.Store(false)
	s.mu.Lock()
	if s.conn != nil {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
			time.Now().Add(time.Second))
		s.conn.Close()
	}
	s.mu.Unlock()
}

// Connected reports whether a connection is currently open.
func (s *Stream) Connected() bool { return s.connected.Load() }

// Running reports whether Run is active and has not been stopped.
func (s *Stream) Running() bool { return s.active() }

func (s *Stream) active() bool { return s.running.Load() && !s.stopped.Load() }

// runOnce makes a single connection attempt and reads until disconnect, Stop
// or ctx cancel. A nil return means the stream ended on request.
func (s *Stream) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.active() {
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()
	s.setConnected(true)

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
		s.setConnected(false)
	}()

	log.Printf("[feed] connected to %s", s.cfg.URL)

	// Closes the connection when ctx is cancelled; exits with the read loop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || !s.active() {
				return nil
			}
			return err
		}

		ticks, err := ParseTickers(raw, time.Now().UTC())
		if err != nil {
			log.Printf("[feed] parse error: %v", err)
			continue
		}
		s.slot.SetBatch(ticks)
		if s.OnTicks != nil {
			s.OnTicks(len(ticks))
		}
	}
}

func (s *Stream) setConnected(up bool) {
	s.connected.Store(up)
	if s.OnConnect != nil {
		s.OnConnect(up)
	}
}

// tickerMsg is one element of the !ticker@arr payload. Only the symbol and
// last price are used.
type tickerMsg struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// ParseTickers decodes a ticker array into ticks stamped with ts. Elements
// with an empty symbol or an unparseable or non-positive price are skipped.
func ParseTickers(raw []byte, ts time.Time) ([]model.Tick, error) {
	var msgs []tickerMsg
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}
	out := make([]model.Tick, 0, len(msgs))
	for _, m := range msgs {
		if m.Symbol == "" {
			continue
		}
		d, err := decimal.NewFromString(m.Close)
		if err != nil || !d.IsPositive() {
			continue
		}
		price, _ := d.Float64()
		out = append(out, model.Tick{Symbol: m.Symbol, Price: price, TS: ts})
	}
	return out, nil
}
