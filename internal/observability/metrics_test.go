package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Namespace(t *testing.T) {
	assert.Equal(t, DefaultNamespace, NewMetrics("").Namespace())
	assert.Equal(t, "custom", NewMetrics("custom").Namespace())
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := NewMetrics("test")

	m.RecordHTTPRequest(http.MethodGet, "/db-credentials", http.StatusOK, 10*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/db-credentials", http.StatusOK, 20*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/db-credentials", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", UnmatchedRoute, "404")))
}

func TestMetrics_InFlight(t *testing.T) {
	m := NewMetrics("test")

	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.SetBuildInfo("1.0.0", "abc123", "today")
	m.RecordHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_http_requests_total")
	assert.Contains(t, string(body), `test_build_info{build_time="today",commit="abc123",version="1.0.0"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_RequestDurationObserved(t *testing.T) {
	m := NewMetrics("test")

	m.RecordHTTPRequest(http.MethodGet, "/db-credentials", http.StatusOK, 250*time.Millisecond)

	observer, err := m.requestDuration.GetMetricWithLabelValues("GET", "/db-credentials")
	require.NoError(t, err)

	var metric io_prometheus_client.Metric
	require.NoError(t, observer.(prometheus.Metric).Write(&metric))
	assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.25, metric.GetHistogram().GetSampleSum(), 0.001)
}
