// Package metrics exposes Prometheus collectors for the HTTP surfaces and
// the ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	expensesRecorded prometheus.Counter
	expensesDeleted  prometheus.Counter
	sharesRemoved    prometheus.Counter
	sharesSettled    prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "http_requests_total",
			Help:      "HTTP and RPC requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		expensesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_recorded_total",
			Help:      "Expenses recorded.",
		}),
		expensesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_deleted_total",
			Help:      "Expenses deleted.",
		}),
		sharesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "shares_deleted_total",
			Help:      "Expense shares removed along with their expense.",
		}),
		sharesSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "shares_settled_total",
			Help:      "Shares moved from unsettled to settled.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.expensesRecorded,
		m.expensesDeleted,
		m.sharesRemoved,
		m.sharesSettled,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ExpenseRecorded implements service.LedgerRecorder.
func (m *Metrics) ExpenseRecorded() {
	m.expensesRecorded.Inc()
}

// ExpenseDeleted implements service.LedgerRecorder.
func (m *Metrics) ExpenseDeleted(shares int64) {
	m.expensesDeleted.Inc()
	m.sharesRemoved.Add(float64(shares))
}

// ShareSettled implements service.LedgerRecorder.
func (m *Metrics) ShareSettled() {
	m.sharesSettled.Inc()
}
