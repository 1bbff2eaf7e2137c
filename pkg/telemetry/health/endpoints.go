package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bloco-hq/tracehub/pkg/config"
)

// LivenessHandler returns an HTTP handler for the liveness probe. It only
// verifies the process is alive.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status":    "ok",
				"timestamp": time.Now().UTC(),
			})
		}
	}
}

// StatusHandler returns an HTTP handler for the tracing status endpoint.
//
// Returns:
//   - 200 OK: at least one backend is up
//   - 503 Service Unavailable: every backend is down
//
// Example response:
//
//	{
//	    "status": "degraded",
//	    "backends": [
//	        {"status": "up", "name": "primary", "breaker": "closed"},
//	        {"status": "down", "name": "fallback", "breaker": "open", "consecutive_failures": 7}
//	    ],
//	    "buffer": {"spans": 120, "traces": 34, "capacity": 10000, "occupancy": 0.012},
//	    "queue": {"depth": 2, "capacity": 2048},
//	    "spans": {"created": 10421, "exported": 1311, "dropped": 96},
//	    "timestamp": "2026-03-01T10:30:00Z"
//	}
func (c *Checker) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.Check()

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// Server serves the observability surface on its own listener: liveness,
// the tracing status endpoint, and Prometheus metrics.
type Server struct {
	cfg     config.StatusConfig
	checker *Checker
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer builds the HTTP server for the configured listen address.
// registry may be nil to skip the /metrics route.
func NewServer(cfg config.StatusConfig, checker *Checker, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/status", checker.StatusHandler())
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return &Server{
		cfg:     cfg,
		checker: checker,
		logger:  logger,
		srv: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status endpoint listening",
			slog.String("address", s.cfg.ListenAddress))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
