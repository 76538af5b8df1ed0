package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Validation outcomes recorded in the result label.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// UnknownSchema is the schema label of requests whose schema could not be
// loaded. Client-supplied URIs never become label values.
const UnknownSchema = "unknown"

// Metrics holds the validation counters and latencies.
type Metrics struct {
	Validations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoparse_validations_total",
				Help: "Total number of validations by schema and result",
			},
			[]string{"schema", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoparse_validation_duration_seconds",
				Help:    "Duration of validations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"schema"},
		),
	}
	reg.MustRegister(m.Validations, m.Duration)
	return m
}

// Observe records one validation.
func (m *Metrics) Observe(schema, result string, elapsed time.Duration) {
	m.Validations.WithLabelValues(schema, result).Inc()
	m.Duration.WithLabelValues(schema).Observe(elapsed.Seconds())
}
