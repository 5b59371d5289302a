package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

const namespace = "newsmirror"

// SyncMetrics exposes pipeline runs as Prometheus collectors on a private registry.
type SyncMetrics struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	articles  *prometheus.CounterVec
	duration  prometheus.Histogram
	indexSize prometheus.Gauge
}

var _ ports.SyncRecorder = (*SyncMetrics)(nil)

func NewSyncMetrics() *SyncMetrics {
	m := &SyncMetrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by result.",
		}, []string{"result"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_articles_total",
			Help:      "Candidates processed by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of a sync run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_articles",
			Help:      "Entries in the local index after the last run.",
		}),
	}

	m.registry.MustRegister(
		m.runs, m.articles, m.duration, m.indexSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records one finished run.
func (m *SyncMetrics) ObserveRun(stats domain.SyncStats, indexSize int, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())

	m.articles.WithLabelValues("new").Add(float64(stats.New))
	m.articles.WithLabelValues("updated").Add(float64(stats.Updated))
	m.articles.WithLabelValues("unchanged").Add(float64(stats.Unchanged))
	m.articles.WithLabelValues("failed").Add(float64(stats.Failed))

	if err == nil {
		m.indexSize.Set(float64(indexSize))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
