package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// OwnerHeader carries the caller identity checked by the owner guard.
const OwnerHeader = "X-Account-Owner"

// requireOwner rejects a mutating account call unless the caller-supplied
// identity matches the account's owner. The account lookup itself can fail
// not-found, which maps to 404 before the guard verdict.
func (s *Server) requireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		caller := r.Header.Get(OwnerHeader)
		if caller == "" {
			writeError(w, ErrUnauthorized)
			return
		}

		account, err := s.accounts.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if account.Owner != caller {
			writeError(w, ErrUnauthorized)
			return
		}

		next(w, r)
	}
}

// HTTP metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// prometheusMiddleware wraps HTTP handlers to collect request metrics.
func prometheusMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			srw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(srw, r)

			endpoint := getEndpoint(r)
			httpRequestsTotal.WithLabelValues(
				r.Method,
				endpoint,
				http.StatusText(srw.statusCode),
			).Inc()
			httpRequestDuration.WithLabelValues(
				r.Method,
				endpoint,
			).Observe(time.Since(start).Seconds())
		})
	}
}

// statusResponseWriter captures the status code
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// getEndpoint returns the route template for metrics, so per-id paths do
// not explode the label cardinality.
func getEndpoint(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}

	pathTemplate, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}

	return pathTemplate
}
