package vault

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("login", true, time.Millisecond)
		m.RecordFetch(nil)
	})
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewMetrics("baocreds", reg)
	second := NewMetrics("baocreds", reg)

	first.RecordRequest("login", true, time.Millisecond)
	second.RecordRequest("login", true, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(first.requestsTotal.WithLabelValues("login", "success")))
}

func TestMetrics_RecordFetch(t *testing.T) {
	m := NewMetrics("baocreds", prometheus.NewRegistry())

	m.RecordFetch(nil)
	m.RecordFetch(NewTransportError("login", "", errors.New("refused")))
	m.RecordFetch(errors.New("unclassified"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchesTotal.WithLabelValues("TransportError")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchesTotal.WithLabelValues("error")))
}

func TestMetrics_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("baocreds", reg)

	m.RecordRequest("read", false, 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("read", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}
