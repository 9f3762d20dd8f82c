package health

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for readiness checks.
type Metrics struct {
	checksTotal   *prometheus.CounterVec
	checkStatus   *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates the check metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "checks_total",
				Help:      "Total number of readiness checks performed",
			},
			[]string{"check", "status"},
		),
		checkStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Last readiness check status (1=healthy, 0=unhealthy)",
			},
			[]string{"check"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "check_duration_seconds",
				Help:      "Duration of readiness checks in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"check"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.checksTotal, m.checkStatus, m.checkDuration)
	}
	return m
}

func (m *Metrics) record(check string, healthy bool, duration time.Duration) {
	if m == nil {
		return
	}

	status, value := string(StatusHealthy), 1.0
	if !healthy {
		status, value = string(StatusUnhealthy), 0
	}
	m.checksTotal.WithLabelValues(check, status).Inc()
	m.checkStatus.WithLabelValues(check).Set(value)
	m.checkDuration.WithLabelValues(check).Observe(duration.Seconds())
}
