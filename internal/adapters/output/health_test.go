package output

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xoelrdgz/tickerwatch/internal/adapters/input"
	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

func TestHealthCheckerStates(t *testing.T) {
	metrics := domain.NewReaderMetrics()
	src := input.NewMemorySource("ticker.dat", "")

	h := NewHealthChecker(src, metrics, HealthCheckerConfig{MaxStaleness: time.Hour})
	status := h.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "WAITING", status.Status)

	metrics.RecordDispatch(sampleSnapshot(), 100)
	h = NewHealthChecker(src, metrics, HealthCheckerConfig{MaxStaleness: time.Hour})
	status = h.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "HEALTHY", status.Status)
	assert.Equal(t, int64(100), status.Offset)

	h = NewHealthChecker(src, metrics, HealthCheckerConfig{MaxStaleness: time.Nanosecond})
	time.Sleep(time.Millisecond)
	status = h.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "STALE", status.Status)
}

func TestHealthCheckerOffline(t *testing.T) {
	src := input.NewFileSource(t.TempDir() + "/missing.dat")
	h := NewHealthChecker(src, domain.NewReaderMetrics(), DefaultHealthCheckerConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OFFLINE"`)
	assert.Contains(t, rec.Body.String(), `"reason":`)
}

func TestHealthCheckerCaches(t *testing.T) {
	src := input.NewMemorySource("ticker.dat", "")
	metrics := domain.NewReaderMetrics()
	h := NewHealthChecker(src, metrics, HealthCheckerConfig{CheckInterval: time.Hour})

	first := h.Check(context.Background())
	metrics.RecordDispatch(sampleSnapshot(), 10)
	second := h.Check(context.Background())

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, int64(0), second.Offset)
}
