package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tathienbao/folio-sentinel/internal/config"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	storeCheckTimeout = 2 * time.Second
)

// Check is the result of a single health probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker produces a Check for one named dependency.
type HealthChecker func() Check

// healthReport is the /health response body.
type healthReport struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Checks    map[string]Check `json:"checks"`
}

// Server exposes the Prometheus scrape endpoint and the health probes
// for the monitor daemon. Prometheus serves from the default registry,
// so one Server per process.
type Server struct {
	httpServer *http.Server
	started    time.Time
	logger     *slog.Logger

	mu     sync.RWMutex
	checks map[string]HealthChecker
}

// NewServer builds the server from the metrics section of the config.
// A zero port or empty path falls back to :9090 and /metrics.
func NewServer(cfg config.MetricsConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	port := cfg.Port
	if port <= 0 {
		port = 9090
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	s := &Server{
		started: time.Now(),
		logger:  logger,
		checks:  make(map[string]HealthChecker),
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// RegisterHealthCheck adds a named dependency probe to /health and
// /ready.
func (s *Server) RegisterHealthCheck(name string, checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = checker
}

// RegisterStoreCheck reports the snapshot store's reachability under
// the "store" check name. ping is typically a cheap read against the
// repository.
func (s *Server) RegisterStoreCheck(ping func(ctx context.Context) error) {
	s.RegisterHealthCheck("store", func() Check {
		ctx, cancel := context.WithTimeout(context.Background(), storeCheckTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			return Check{Status: statusUnhealthy, Message: err.Error()}
		}
		return Check{Status: statusHealthy}
	})
}

// Start begins serving in the background. Listen errors are logged, not
// returned; a dead metrics endpoint must not take the monitor down.
func (s *Server) Start() {
	s.logger.Info("starting metrics server", "addr", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server error", "err", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) snapshotChecks() map[string]HealthChecker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checks := make(map[string]HealthChecker, len(s.checks))
	for name, checker := range s.checks {
		checks[name] = checker
	}
	return checks
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report := healthReport{
		Status:    statusHealthy,
		Timestamp: time.Now(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Checks:    make(map[string]Check),
	}

	for name, checker := range s.snapshotChecks() {
		check := checker()
		report.Checks[name] = check
		if check.Status != statusHealthy {
			report.Status = statusUnhealthy
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if report.Status != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	for _, checker := range s.snapshotChecks() {
		if checker().Status != statusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
