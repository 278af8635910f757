// Package metrics exposes Prometheus instruments for the ledger. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	expenseWrites       *prometheus.CounterVec
	occurrences         prometheus.Counter
	dashboardCache      *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	eventsConsumed      *prometheus.CounterVec
	settlementTransfers prometheus.Gauge
}

// New registers every instrument on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rateio_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rateio_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		expenseWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rateio_expense_writes_total",
			Help: "Expense writes by operation",
		}, []string{"operation"}),
		occurrences: f.NewCounter(prometheus.CounterOpts{
			Name: "rateio_recurring_occurrences_generated_total",
			Help: "Expenses generated from recurrence rules",
		}),
		dashboardCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rateio_dashboard_cache_total",
			Help: "Dashboard summary cache lookups by result",
		}, []string{"result"}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rateio_ledger_events_published_total",
			Help: "Ledger events published by type and status",
		}, []string{"type", "status"}),
		eventsConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rateio_ledger_events_consumed_total",
			Help: "Ledger events consumed by type and status",
		}, []string{"type", "status"}),
		settlementTransfers: f.NewGauge(prometheus.GaugeOpts{
			Name: "rateio_settlement_transfers",
			Help: "Number of transfers in the latest settlement",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ExpenseWritten(operation string) {
	if m == nil {
		return
	}
	m.expenseWrites.WithLabelValues(operation).Inc()
}

func (m *Metrics) OccurrencesGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.occurrences.Add(float64(n))
}

func (m *Metrics) DashboardCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.dashboardCache.WithLabelValues(result).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType, status(err)).Inc()
}

func (m *Metrics) EventConsumed(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(eventType, status(err)).Inc()
}

func (m *Metrics) SettlementTransfers(n int) {
	if m == nil {
		return
	}
	m.settlementTransfers.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
