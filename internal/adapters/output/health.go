package output

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/internal/ports"
)

type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Status    string        `json:"status"`
	Offset    int64         `json:"offset"`
	Snapshots int64         `json:"snapshots"`
	SinceLast time.Duration `json:"since_last_ns"`
	Uptime    time.Duration `json:"uptime_ns"`
	Reason    string        `json:"reason,omitempty"`
}

// HealthChecker reports whether the source is reachable and snapshots keep
// arriving. MaxStaleness of zero disables the staleness check.
type HealthChecker struct {
	source       ports.Source
	metrics      *domain.ReaderMetrics
	maxStaleness time.Duration

	lastCheck     HealthStatus
	lastCheckTime time.Time
	lastCheckMu   sync.RWMutex
	checkInterval time.Duration
}

type HealthCheckerConfig struct {
	MaxStaleness  time.Duration
	CheckInterval time.Duration
}

func DefaultHealthCheckerConfig() HealthCheckerConfig {
	return HealthCheckerConfig{
		MaxStaleness:  0,
		CheckInterval: 5 * time.Second,
	}
}

func NewHealthChecker(source ports.Source, metrics *domain.ReaderMetrics, config HealthCheckerConfig) *HealthChecker {
	return &HealthChecker{
		source:        source,
		metrics:       metrics,
		maxStaleness:  config.MaxStaleness,
		checkInterval: config.CheckInterval,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	h.lastCheckMu.RLock()
	if !h.lastCheckTime.IsZero() && time.Since(h.lastCheckTime) < h.checkInterval {
		cached := h.lastCheck
		h.lastCheckMu.RUnlock()
		return cached
	}
	h.lastCheckMu.RUnlock()

	status := h.performCheck(ctx)

	h.lastCheckMu.Lock()
	h.lastCheck = status
	h.lastCheckTime = time.Now()
	h.lastCheckMu.Unlock()

	return status
}

func (h *HealthChecker) performCheck(ctx context.Context) HealthStatus {
	snap := h.metrics.GetSnapshot()
	status := HealthStatus{
		Offset:    snap.Offset,
		Snapshots: snap.SnapshotsDispatched,
		Uptime:    snap.Uptime,
	}

	if err := ctx.Err(); err != nil {
		status.Status = "UNKNOWN"
		status.Reason = err.Error()
		return status
	}

	f, err := h.source.Open()
	if err != nil {
		status.Status = "OFFLINE"
		status.Reason = fmt.Sprintf("source %s unavailable: %v", h.source.Name(), err)
		return status
	}
	f.Close()

	if snap.SnapshotsDispatched == 0 {
		status.Healthy = true
		status.Status = "WAITING"
		return status
	}

	status.SinceLast = time.Since(snap.LastDispatch)
	if h.maxStaleness > 0 && status.SinceLast > h.maxStaleness {
		status.Status = "STALE"
		status.Reason = fmt.Sprintf("no snapshot for %v (limit %v)", status.SinceLast.Round(time.Second), h.maxStaleness)
		return status
	}

	status.Healthy = true
	status.Status = "HEALTHY"
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	fmt.Fprintf(w, `{"healthy":%t,"status":"%s","offset":%d,"snapshots":%d,"since_last_seconds":%.0f,"uptime_seconds":%.0f`,
		status.Healthy,
		status.Status,
		status.Offset,
		status.Snapshots,
		status.SinceLast.Seconds(),
		status.Uptime.Seconds(),
	)

	if status.Reason != "" {
		fmt.Fprintf(w, `,"reason":%q`, status.Reason)
	}
	fmt.Fprint(w, "}")
}
