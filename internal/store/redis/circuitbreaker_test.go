package redis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"cryptotracker/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// clockedDeadCache is an unreachable cache whose breaker runs on a fake clock
// and records its transitions.
func clockedDeadCache(maxFailures int) (*BarCache, *fakeClock, *[]State) {
	c := deadCache(maxFailures)
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c.cb.now = clk.Now
	var transitions []State
	c.cb.OnStateChange = func(from, to State) { transitions = append(transitions, to) }
	return c, clk, &transitions
}

func sampleSeries() model.Series {
	return model.Series{{Time: time.Unix(1700000000, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5}}
}

// ────────────────────────────────────────────────────────────
// Bar cache behind an open breaker
// ────────────────────────────────────────────────────────────

func TestBreaker_OpenCacheRejectsGetAndSet(t *testing.T) {
	c, _, _ := clockedDeadCache(1)
	defer c.Close()
	ctx := context.Background()
	var hooks int
	c.OnHit = func() { hooks++ }
	c.OnMiss = func() { hooks++ }

	if _, err := c.Get(ctx, Key("BTCUSDT", "1h")); err == nil || errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("first Get should fail dialing, got %v", err)
	}
	if c.Breaker().CurrentState() != StateOpen {
		t.Fatalf("breaker = %v, want open", c.Breaker().CurrentState())
	}

	if _, err := c.Get(ctx, Key("BTCUSDT", "1h")); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Get while open = %v, want ErrCircuitOpen", err)
	}
	if err := c.Set(ctx, Key("BTCUSDT", "1h"), sampleSeries(), time.Minute); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Set while open = %v, want ErrCircuitOpen", err)
	}
	if hooks != 0 {
		t.Errorf("rejected calls fired %d hit/miss hooks", hooks)
	}
	if got := c.Breaker().Failures(); got != 1 {
		t.Errorf("rejected calls should not count as failures, got %d", got)
	}
}

func TestBreaker_TrialCallAfterCooldown(t *testing.T) {
	c, clk, transitions := clockedDeadCache(1)
	defer c.Close()
	ctx := context.Background()
	key := Key("ETHUSDT", "4h")

	c.Get(ctx, key)
	clk.Advance(time.Minute - time.Millisecond)
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("before cooldown: %v, want ErrCircuitOpen", err)
	}

	clk.Advance(time.Millisecond)
	if _, err := c.Get(ctx, key); err == nil || errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("trial call should dial and fail, got %v", err)
	}
	want := []State{StateOpen, StateHalfOpen, StateOpen}
	if len(*transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", *transitions, want)
	}
	for i := range want {
		if (*transitions)[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", *transitions, want)
		}
	}

	// The failed trial call restarts the cooldown.
	clk.Advance(time.Second)
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("after failed trial call: %v, want ErrCircuitOpen", err)
	}
}

func TestBarCache_UnencodableSeriesSkipsRoundTrip(t *testing.T) {
	c, _, _ := clockedDeadCache(1)
	defer c.Close()
	s := sampleSeries()
	s[0].High = math.Inf(1)

	err := c.Set(context.Background(), Key("BTCUSDT", "1d"), s, time.Minute)
	if err == nil || !strings.Contains(err.Error(), "encode") {
		t.Fatalf("Set = %v, want encode error", err)
	}
	if c.Breaker().Failures() != 0 || c.Breaker().CurrentState() != StateClosed {
		t.Error("an encode error is not a redis failure")
	}
}

// ────────────────────────────────────────────────────────────
// Recovery
// ────────────────────────────────────────────────────────────

func TestBreaker_RedisBackClosesOnTrialCall(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(2, 10*time.Second)
	cb.now = clk.Now
	down := errors.New("dial tcp: connection refused")

	cb.Execute(func() error { return down })
	cb.Execute(func() error { return down })
	if cb.CurrentState() != StateOpen {
		t.Fatal("expected open after 2 refused dials")
	}

	clk.Advance(10 * time.Second)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("trial call = %v", err)
	}
	if cb.CurrentState() != StateClosed || cb.Failures() != 0 {
		t.Errorf("state=%v failures=%d, want closed/0", cb.CurrentState(), cb.Failures())
	}
}

func TestBreaker_MissBetweenFailuresKeepsClosed(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	timeout := errors.New("i/o timeout")

	// A cache miss reaches the breaker as a successful round trip.
	cb.Execute(func() error { return timeout })
	cb.Execute(func() error { return timeout })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return timeout })
	cb.Execute(func() error { return timeout })

	if cb.CurrentState() != StateClosed {
		t.Errorf("state = %v, want closed", cb.CurrentState())
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open", State(9): "unknown"}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d) = %q, want %q", int(s), s.String(), want)
		}
	}
}
