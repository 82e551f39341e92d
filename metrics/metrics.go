// Package metrics exports Prometheus instrumentation for identifier
// generation, plus the HTTP server that serves the scrape endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registerer allows custom metric registration.
	Registerer = prometheus.DefaultRegisterer
)

// SetRegisterer sets a custom Prometheus registerer. Metrics created before
// the call stay with the previous registerer.
func SetRegisterer(r prometheus.Registerer) {
	Registerer = r
}

// Metric types (aliases from Prometheus).
type (
	CounterOpts   = prometheus.CounterOpts
	GaugeOpts     = prometheus.GaugeOpts
	HistogramOpts = prometheus.HistogramOpts
	Counter       = prometheus.Counter
	CounterVec    = prometheus.CounterVec
	Gauge         = prometheus.Gauge
	Histogram     = prometheus.Histogram
	HistogramVec  = prometheus.HistogramVec
)

// NewCounter creates a Counter metric.
func NewCounter(opts CounterOpts) Counter {
	return promauto.With(Registerer).NewCounter(opts)
}

// NewCounterVec creates a CounterVec metric.
func NewCounterVec(opts CounterOpts, labels []string) *CounterVec {
	return promauto.With(Registerer).NewCounterVec(opts, labels)
}

// NewGauge creates a Gauge metric.
func NewGauge(opts GaugeOpts) Gauge {
	return promauto.With(Registerer).NewGauge(opts)
}

// NewHistogram creates a Histogram metric.
func NewHistogram(opts HistogramOpts) Histogram {
	return promauto.With(Registerer).NewHistogram(opts)
}

// NewHistogramVec creates a HistogramVec metric.
func NewHistogramVec(opts HistogramOpts, labels []string) *HistogramVec {
	return promauto.With(Registerer).NewHistogramVec(opts, labels)
}
