// Package metrics holds the Prometheus collectors of the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice_dashboard"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"service", "method", "path"},
	)

	remoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supabase",
			Name:      "calls_total",
			Help:      "Total number of calls to the hosted data store.",
		},
		[]string{"op", "target", "outcome"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "supabase",
			Name:      "call_duration_seconds",
			Help:      "Duration of calls to the hosted data store.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"op", "target"},
	)

	invoiceMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_mutations_total",
			Help:      "Invoice create, update and delete attempts by result.",
		},
		[]string{"action", "result"},
	)

	revalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_revalidations_total",
			Help:      "Route revalidation signals by origin.",
		},
		[]string{"origin"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		remoteCalls,
		remoteDuration,
		invoiceMutations,
		revalidations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncInFlight marks the start of an HTTP request.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks the end of an HTTP request.
func DecInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// ObserveRemoteCall records a data-store round trip. Its signature matches client.Observer.
func ObserveRemoteCall(op, target string, status int, err error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
	case status >= 400:
		outcome = "http_" + strconv.Itoa(status)
	}
	remoteCalls.WithLabelValues(op, target, outcome).Inc()
	remoteDuration.WithLabelValues(op, target).Observe(elapsed.Seconds())
}

// RecordMutation counts an invoice mutation outcome.
// action is create, update or delete; result is ok, validation_failed or database_failed.
func RecordMutation(action, result string) {
	invoiceMutations.WithLabelValues(action, result).Inc()
}

// RecordRevalidation counts a revalidation signal; origin is local or remote.
func RecordRevalidation(origin string) {
	revalidations.WithLabelValues(origin).Inc()
}
