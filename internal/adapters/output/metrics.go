package output

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

// PrometheusMetrics is both a snapshot observer and a line processing
// observer. Register it last so it only counts snapshots every report
// observer accepted.
type PrometheusMetrics struct {
	snapshots      prometheus.Counter
	records        prometheus.Counter
	linesByResult  *prometheus.CounterVec
	offset         prometheus.Gauge
	lastPrice      *prometheus.GaugeVec
	lastSnapshotTS prometheus.Gauge
	reads          prometheus.CounterFunc

	registry *prometheus.Registry
	server   *http.Server
	mu       sync.Mutex
}

type MetricsConfig struct {
	Port       string
	Path       string
	HealthPath string
	Health     http.Handler
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Port:       ":9090",
		Path:       "/metrics",
		HealthPath: "/ready",
	}
}

// NewPrometheusMetrics registers collectors on registry, or on the default
// registerer when registry is nil.
func NewPrometheusMetrics(namespace string, registry *prometheus.Registry, internal *domain.ReaderMetrics) *PrometheusMetrics {
	if namespace == "" {
		namespace = "tickerwatch"
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if registry != nil {
		reg = registry
	}
	factory := promauto.With(reg)

	m := &PrometheusMetrics{registry: registry}

	m.snapshots = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_dispatched_total",
		Help:      "Snapshots delivered to observers",
	})

	m.records = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dispatched_total",
		Help:      "Stock records delivered to observers",
	})

	m.linesByResult = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_processed_total",
		Help:      "Lines scanned by the reader, by classification",
	}, []string{"result"})

	m.offset = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reader_offset_bytes",
		Help:      "Committed byte offset into the ticker source",
	})

	m.lastPrice = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_price",
		Help:      "Current price from the latest snapshot",
	}, []string{"ticker"})

	m.lastSnapshotTS = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_snapshot_timestamp_seconds",
		Help:      "Feed time of the latest snapshot, read as UTC",
	})

	m.reads = factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_total",
		Help:      "ReadSnapshot invocations",
	}, func() float64 {
		if internal != nil {
			return float64(internal.GetSnapshot().Reads)
		}
		return 0
	})

	return m
}

func (m *PrometheusMetrics) Update(snap *domain.Snapshot) error {
	m.snapshots.Inc()
	m.records.Add(float64(snap.Len()))
	m.lastSnapshotTS.Set(float64(snap.Time.Unix()))
	for _, r := range snap.Records {
		m.lastPrice.WithLabelValues(r.Ticker).Set(r.CurrentPrice)
	}
	return nil
}

func (m *PrometheusMetrics) Name() string { return "metrics" }

func (m *PrometheusMetrics) IncrementLinesProcessedByResult(result string) {
	m.linesByResult.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) SetOffset(offset int64) {
	m.offset.Set(float64(offset))
}

func (m *PrometheusMetrics) handler() http.Handler {
	if m.registry != nil {
		return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

func (m *PrometheusMetrics) StartServer(config MetricsConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle(config.Path, m.handler())
	if config.Health != nil && config.HealthPath != "" {
		mux.Handle(config.HealthPath, config.Health)
	}

	m.server = &http.Server{
		Addr:              config.Port,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.Port).Str("path", config.Path).Msg("Starting Prometheus metrics server")
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	return nil
}

func (m *PrometheusMetrics) StopServer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return m.server.Close()
	}
	return nil
}
