package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queriesTotal  *prometheus.CounterVec
	degradedTotal *prometheus.CounterVec
	validRegions  prometheus.Gauge
	stageLatency  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premiumpulse_warehouse_queries_total",
				Help: "Total number of warehouse table queries",
			},
			[]string{"table", "status"},
		),
		degradedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premiumpulse_degraded_datasets_total",
				Help: "Total number of requests served without an optional dataset",
			},
			[]string{"table"},
		),
		validRegions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "premiumpulse_valid_regions",
				Help: "Number of regions that survived validation on the last run",
			},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "premiumpulse_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordQuery records a warehouse table query outcome.
func (r *Recorder) RecordQuery(table, status string) {
	r.queriesTotal.WithLabelValues(table, status).Inc()
}

// RecordStageLatency records one pipeline stage's latency in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordValidRegions records how many regions survived validation.
func (r *Recorder) RecordValidRegions(n int) {
	r.validRegions.Set(float64(n))
}

// RecordDegraded records a request served without an optional dataset.
func (r *Recorder) RecordDegraded(table string) {
	r.degradedTotal.WithLabelValues(table).Inc()
}
