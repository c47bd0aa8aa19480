package hubconsole

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console server collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
	ProxyErrors   *prometheus.CounterVec
	ReloadClients prometheus.Gauge
	Reloads       prometheus.Counter

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	const namespace = "hubconsole"

	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of requests by route, method and status code",
		}, []string{"route", "method", "code"}),

		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of request handling time",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 5, 7),
		}, []string{"route", "method"}),

		ProxyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "errors_total",
			Help:      "Count of requests the backend could not serve",
		}, []string{"prefix"}),

		ReloadClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "clients",
			Help:      "Number of browsers connected for live reload",
		}),

		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "broadcasts_total",
			Help:      "Count of reload messages sent after asset changes",
		}),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.PrometheusCollectors()...)
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Requests,
		m.Latency,
		m.ProxyErrors,
		m.ReloadClients,
		m.Reloads,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) proxyError(prefix string) {
	if m == nil {
		return
	}
	m.ProxyErrors.WithLabelValues(prefix).Inc()
}

func (m *Metrics) reloadClients(n int) {
	if m == nil {
		return
	}
	m.ReloadClients.Set(float64(n))
}

func (m *Metrics) reloaded() {
	if m == nil {
		return
	}
	m.Reloads.Inc()
}
