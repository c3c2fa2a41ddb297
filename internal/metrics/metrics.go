package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "radmon_"

	ResultOK        = "ok"
	ResultInvalid   = "invalid"
	ResultSinkError = "sink_error"
)

// Metrics groups the ingest collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	sinkLatency *prometheus.HistogramVec
	lastReading *prometheus.GaugeVec
}

// New registers the ingest collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total ingest requests by result",
			},
			[]string{"result"},
		),
		sinkLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sink_write_seconds",
				Help:    "Sink write latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sink", "result"},
		),
		lastReading: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_reading",
				Help: "Most recently recorded value per field",
			},
			[]string{"field"},
		),
	}
	m.registry.MustRegister(m.requests, m.sinkLatency, m.lastReading)
	return m
}

// ObserveRequest counts one ingest request.
func (m *Metrics) ObserveRequest(result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(result).Inc()
}

// ObserveSinkWrite records how long a sink write took.
func (m *Metrics) ObserveSinkWrite(sink string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultSinkError
	}
	m.sinkLatency.WithLabelValues(sink, result).Observe(elapsed.Seconds())
}

// SetLastReading stores the latest recorded value for a field.
func (m *Metrics) SetLastReading(field string, value float64) {
	if m == nil {
		return
	}
	m.lastReading.WithLabelValues(field).Set(value)
}

// RequestCount exposes the request counter for a result label.
func (m *Metrics) RequestCount(result string) prometheus.Counter {
	return m.requests.WithLabelValues(result)
}

// LastReading exposes the gauge for a field.
func (m *Metrics) LastReading(field string) prometheus.Gauge {
	return m.lastReading.WithLabelValues(field)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
