package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	Registry *prometheus.Registry

	// Refresh loop
	FramesTotal    prometheus.Counter
	FrameDur       prometheus.Histogram
	RefetchDur     prometheus.Histogram
	RefetchEmpty   prometheus.Counter
	UpstreamDur    prometheus.Histogram // REST round trips, cache misses only
	RefetchesTotal *prometheus.CounterVec // labels: trigger=key|schedule|startup
	KeysDropped    prometheus.Counter

	// Price feed
	TicksTotal   prometheus.Counter
	WSReconnects prometheus.Counter
	WSConnected  prometheus.Gauge

	// Bar cache
	CacheHits                prometheus.Counter
	CacheMisses              prometheus.Counter
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter

	// Sidebar
	WatchlistLoads *prometheus.CounterVec // labels: mode
}

// NewMetrics creates all metrics on a private registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,

		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_frames_total",
			Help: "Total chart frames rendered",
		}),
		FrameDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptotracker_frame_duration_seconds",
			Help:    "Indicator + canvas compute latency per frame",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		RefetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptotracker_refetch_duration_seconds",
			Help:    "Historical bar fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		UpstreamDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptotracker_upstream_duration_seconds",
			Help:    "Binance/CoinGecko history request latency",
			Buckets: prometheus.DefBuckets,
		}),
		RefetchEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_refetch_empty_total",
			Help: "Historical fetches that returned no bars",
		}),
		RefetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptotracker_refetches_total",
			Help: "Historical fetches by trigger",
		}, []string{"trigger"}),
		KeysDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_keys_dropped_total",
			Help: "Key presses dropped because the key queue was full",
		}),

		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_ticks_total",
			Help: "Total ticker updates received from WebSocket",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_ws_reconnects_total",
			Help: "Total WebSocket reconnection attempts",
		}),
		WSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cryptotracker_ws_connected",
			Help: "1 while the ticker stream is connected",
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_cache_hits_total",
			Help: "Bar cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_cache_misses_total",
			Help: "Bar cache misses",
		}),
		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cryptotracker_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptotracker_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),

		WatchlistLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptotracker_watchlist_loads_total",
			Help: "Sidebar reloads by mode",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FramesTotal,
		m.FrameDur,
		m.RefetchDur,
		m.RefetchEmpty,
		m.UpstreamDur,
		m.RefetchesTotal,
		m.KeysDropped,
		m.TicksTotal,
		m.WSReconnects,
		m.WSConnected,
		m.CacheHits,
		m.CacheMisses,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.WatchlistLoads,
	)

	return m
}

// SetBreakerState records a circuit breaker transition. state follows the
// breaker's numbering (0 closed, 1 open, 2 half-open).
func (m *Metrics) SetBreakerState(state int) {
	m.RedisCircuitBreakerState.Set(float64(state))
	if state == 1 {
		m.RedisCircuitBreakerTrips.Inc()
	}
}

// Pinger is anything that can report liveness, e.g. the Redis bar cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the dashboard's dependency health.
type HealthStatus struct {
	mu sync.RWMutex

	WSConnected    bool
	LastTickTime   time.Time
	RedisEnabled   bool
	RedisConnected bool
	SQLiteOK       bool
	LastRefetch    time.Time
	Bars           int

	RedisLatencyMs  float64
	SQLiteLatencyMs float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetWSConnected(v bool) {
	h.mu.Lock()
	h.WSConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisEnabled(v bool) {
	h.mu.Lock()
	h.RedisEnabled = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

// SetRefetch records the outcome of the latest historical fetch.
func (h *HealthStatus) SetRefetch(t time.Time, bars int) {
	h.mu.Lock()
	h.LastRefetch = t
	h.Bars = bars
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, p Pinger) {
	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks. redis may be nil.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, redis Pinger, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if redis != nil {
					h.CheckRedis(checkCtx, redis)
				}
				if sqlDB != nil {
					h.CheckSQLite(checkCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	redisDown := h.RedisEnabled && !h.RedisConnected
	if !h.WSConnected || !h.SQLiteOK || redisDown {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.WSConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		WSConnected     bool    `json:"ws_connected"`
		LastTickTime    string  `json:"last_tick_time"`
		TickAge         string  `json:"tick_age"`
		RedisEnabled    bool    `json:"redis_enabled"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastRefetch     string  `json:"last_refetch"`
		Bars            int     `json:"bars"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		WSConnected:     h.WSConnected,
		LastTickTime:    h.LastTickTime.Format(time.RFC3339),
		TickAge:         tickAge,
		RedisEnabled:    h.RedisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastRefetch:     h.LastRefetch.Format(time.RFC3339),
		Bars:            h.Bars,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, m *Metrics, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
