package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the weather API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API routes plus /healthz, /readyz, and /metrics.
func NewServer(addr string, svc WeatherService, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := newInstrumentedMux(metrics, logger)

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      60 * time.Second, // covers simulated latency plus model calls
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}

	mux.Handle("GET /healthz", sharedobs.LivenessHandler())
	mux.Handle("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	h := &handlers{svc: svc, logger: logger}
	mux.HandleFunc("GET /api/weather", h.weather)
	mux.HandleFunc("GET /api/insights", h.insights)
	mux.HandleFunc("POST /api/guidance/clothing", h.clothing)
	mux.HandleFunc("POST /api/guidance/activity", h.activity)
	mux.HandleFunc("POST /api/guidance/eco", h.eco)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
