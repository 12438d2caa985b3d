// Package monitoring exposes Prometheus metrics for the site.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds every collector the site records into.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal     *prometheus.CounterVec
	ResponseTimeHistogram *prometheus.HistogramVec
	BackendCallsTotal     *prometheus.CounterVec
	BackendCallSeconds    *prometheus.HistogramVec
	OrdersTotal           prometheus.Counter
	OrderValueTotal       prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ResponseTimeHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_time_seconds",
				Help:    "Histogram of response times",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		BackendCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refer_backend_calls_total",
				Help: "Calls made to the Refer API by route and status",
			},
			[]string{"route", "status"},
		),
		BackendCallSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "refer_backend_call_seconds",
				Help:    "Latency of calls to the Refer API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		OrdersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_orders_total",
			Help: "Orders recorded by the simulated checkout",
		}),
		OrderValueTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_order_value_total",
			Help: "Sum of recorded order totals",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served request. path should be a route pattern,
// never a raw URL.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.ResponseTimeHistogram.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveBackendCall records one Refer API call. status is 0 when no response
// arrived.
func (m *Metrics) ObserveBackendCall(route string, status int, elapsed time.Duration) {
	m.BackendCallsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.BackendCallSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveOrder records a completed order.
func (m *Metrics) ObserveOrder(total decimal.Decimal) {
	m.OrdersTotal.Inc()
	m.OrderValueTotal.Add(total.InexactFloat64())
}
