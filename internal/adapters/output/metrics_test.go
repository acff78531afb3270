package output

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

func TestPrometheusMetrics(t *testing.T) {
	internal := domain.NewReaderMetrics()
	internal.IncrementReads()
	m := NewPrometheusMetrics("test", prometheus.NewRegistry(), internal)

	require.NoError(t, m.Update(sampleSnapshot()))
	m.IncrementLinesProcessedByResult(domain.LineResultRecord)
	m.IncrementLinesProcessedByResult(domain.LineResultRecord)
	m.IncrementLinesProcessedByResult(domain.LineResultSkipped)
	m.SetOffset(512)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.linesByResult.WithLabelValues(domain.LineResultRecord)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linesByResult.WithLabelValues(domain.LineResultSkipped)))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.offset))
	assert.Equal(t, 70.0, testutil.ToFloat64(m.lastPrice.WithLabelValues("BA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reads))
	assert.Equal(t, "metrics", m.Name())
}

func TestPrometheusMetricsHandler(t *testing.T) {
	m := NewPrometheusMetrics("test", prometheus.NewRegistry(), nil)
	require.NoError(t, m.Update(sampleSnapshot()))

	rec := httptest.NewRecorder()
	m.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_snapshots_dispatched_total 1")
	assert.Contains(t, rec.Body.String(), `test_last_price{ticker="ACME"} 10`)
}
