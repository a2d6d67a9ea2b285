package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// instrumentedMux records request counts and latency per route pattern and tags
// every response with a request ID.
type instrumentedMux struct {
	*http.ServeMux
	metrics *observability.Metrics
	logger  *slog.Logger
}

func newInstrumentedMux(metrics *observability.Metrics, logger *slog.Logger) *instrumentedMux {
	return &instrumentedMux{
		ServeMux: http.NewServeMux(),
		metrics:  metrics,
		logger:   logger,
	}
}

func (mux *instrumentedMux) Handle(pattern string, handler http.Handler) {
	mux.ServeMux.Handle(pattern, mux.trace(pattern, handler))
}

func (mux *instrumentedMux) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	mux.Handle(pattern, http.HandlerFunc(handler))
}

func (mux *instrumentedMux) trace(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		mux.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		mux.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		mux.logger.Debug("http request",
			"route", route,
			"status", sw.status,
			"duration", elapsed,
			"request_id", requestID,
		)
	})
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
