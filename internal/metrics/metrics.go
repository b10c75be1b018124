package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "credential_node"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	contentBackendAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_backend_attempts_total",
		Help:      "Upload attempts per content store backend.",
	}, []string{"backend", "outcome"})

	ledgerFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_fallbacks_total",
		Help:      "Ledger writes replaced by locally generated identifiers.",
	}, []string{"operation"})

	operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Service operations by outcome.",
	}, []string{"operation", "outcome"})

	verifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Verifications by ledger verdict and validity.",
	}, []string{"verdict", "valid"})

	anchored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciler_anchored_total",
		Help:      "Credentials anchored on the ledger by the reconciler.",
	})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		contentBackendAttempts,
		ledgerFallbacks,
		operations,
		verifications,
		anchored,
		requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry returns the registry holding the service metrics
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes the registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ContentBackendAttempt counts one content store backend attempt
func ContentBackendAttempt(backend string, err error) {
	contentBackendAttempts.WithLabelValues(backend, outcome(err)).Inc()
}

// LedgerFallback counts a ledger write answered with a local receipt
func LedgerFallback(operation string) {
	ledgerFallbacks.WithLabelValues(operation).Inc()
}

// Operation counts one service operation
func Operation(operation string, err error) {
	operations.WithLabelValues(operation, outcome(err)).Inc()
}

// Verification counts a verification result
func Verification(verdict string, valid bool) {
	verifications.WithLabelValues(verdict, strconv.FormatBool(valid)).Inc()
}

// Anchored counts credentials anchored by the reconciler
func Anchored(n int) {
	anchored.Add(float64(n))
}

// Middleware records the latency of every request labelled by its chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
