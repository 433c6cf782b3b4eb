package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the library browser.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PreviewsTotal   *prometheus.CounterVec
	Components      prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complib_http_requests_total",
				Help: "Total HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "complib_http_request_duration_seconds",
				Help:    "HTTP request duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		PreviewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complib_preview_renders_total",
				Help: "Preview renders by result.",
			},
			[]string{"result"},
		),
		Components: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "complib_components",
				Help: "Number of components in the library at the last listing.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.PreviewsTotal)
	reg.MustRegister(m.Components)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPreview increments the preview counter.
func (m *Metrics) RecordPreview(result string) {
	m.PreviewsTotal.WithLabelValues(result).Inc()
}
