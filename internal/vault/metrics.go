package vault

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics records Vault request and fetch outcome metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchesTotal    *prometheus.CounterVec
}

// NewMetrics creates the Vault metrics and registers them with reg.
// Collectors that are already registered are reused.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vault_requests_total",
				Help:      "Total number of Vault requests",
			},
			[]string{"operation", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "vault_request_duration_seconds",
				Help:      "Duration of Vault requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "secret_fetches_total",
				Help:      "Total number of secret fetches by result",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		m.requestsTotal = registerOrReuse(reg, m.requestsTotal)
		m.requestDuration = registerOrReuse(reg, m.requestDuration)
		m.fetchesTotal = registerOrReuse(reg, m.fetchesTotal)
	}

	return m
}

// registerOrReuse registers c, returning the existing collector on a duplicate registration.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// RecordRequest records a single Vault request.
func (m *Metrics) RecordRequest(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}

	status := statusSuccess
	if !success {
		status = statusError
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFetch records the outcome of a full login and read exchange.
func (m *Metrics) RecordFetch(err error) {
	if m == nil {
		return
	}

	result := statusSuccess
	if err != nil {
		result = string(KindOf(err))
		if result == "" {
			result = statusError
		}
	}
	m.fetchesTotal.WithLabelValues(result).Inc()
}
