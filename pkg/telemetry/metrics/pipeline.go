package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks throughput and latency of the triage pipeline.
//
// Metrics:
//   - gatehouse_keystone_submissions_total: Submissions entering the pipeline
//   - gatehouse_keystone_pipeline_duration_seconds: End-to-end duration
//   - gatehouse_keystone_stage_duration_seconds: Per-stage duration
type PipelineMetrics struct {
	// Total submissions processed
	submissionsTotal prometheus.Counter

	// End-to-end pipeline duration histogram
	duration prometheus.Histogram

	// Per-stage duration histogram (extract, normalize, decide, record)
	stageDuration *prometheus.HistogramVec
}

// NewPipelineMetrics creates and registers pipeline metrics with the
// provided registry.
func NewPipelineMetrics(cfg *Config, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		submissionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "submissions_total",
				Help:      "Total number of submissions processed",
			},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_duration_seconds",
				Help:      "End-to-end duration of submission processing in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages in seconds",
				// Normalize and decide run in microseconds, extraction in seconds.
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4.2s
			},
			[]string{"stage"},
		),
	}

	registry.MustRegister(
		pm.submissionsTotal,
		pm.duration,
		pm.stageDuration,
	)

	return pm
}

// RecordSubmission counts one submission entering the pipeline.
func (pm *PipelineMetrics) RecordSubmission() {
	pm.submissionsTotal.Inc()
}

// RecordDuration records the end-to-end duration of one submission.
func (pm *PipelineMetrics) RecordDuration(duration time.Duration) {
	pm.duration.Observe(duration.Seconds())
}

// RecordStageDuration records the duration of a single pipeline stage.
func (pm *PipelineMetrics) RecordStageDuration(stage string, duration time.Duration) {
	pm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
