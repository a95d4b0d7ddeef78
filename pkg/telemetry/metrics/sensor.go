package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SensorMetrics tracks extraction sensor behavior.
//
// Metrics:
//   - gatehouse_keystone_sensor_requests_total: Extraction calls by model
//   - gatehouse_keystone_sensor_failures_total: Failed extractions
//   - gatehouse_keystone_sensor_cache_hits_total: Response cache hits
//   - gatehouse_keystone_sensor_cache_misses_total: Response cache misses
type SensorMetrics struct {
	// Extraction calls by model
	requestsTotal *prometheus.CounterVec

	// Extractions that failed and were recovered into absent results
	failuresTotal prometheus.Counter

	// Response cache hit counter
	cacheHitsTotal prometheus.Counter

	// Response cache miss counter
	cacheMissesTotal prometheus.Counter
}

// NewSensorMetrics creates and registers sensor metrics with the provided
// registry.
func NewSensorMetrics(cfg *Config, registry *prometheus.Registry) *SensorMetrics {
	sm := &SensorMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sensor_requests_total",
				Help:      "Total number of extraction sensor calls",
			},
			[]string{"model"},
		),

		failuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sensor_failures_total",
				Help:      "Total number of extraction failures recovered into absent results",
			},
		),

		cacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sensor_cache_hits_total",
				Help:      "Total number of sensor response cache hits",
			},
		),

		cacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sensor_cache_misses_total",
				Help:      "Total number of sensor response cache misses",
			},
		),
	}

	registry.MustRegister(
		sm.requestsTotal,
		sm.failuresTotal,
		sm.cacheHitsTotal,
		sm.cacheMissesTotal,
	)

	return sm
}

// RecordRequest counts one extraction call by model.
func (sm *SensorMetrics) RecordRequest(model string) {
	sm.requestsTotal.WithLabelValues(model).Inc()
}

// RecordFailure counts one recovered extraction failure.
func (sm *SensorMetrics) RecordFailure() {
	sm.failuresTotal.Inc()
}

// RecordCacheHit counts one response cache hit.
func (sm *SensorMetrics) RecordCacheHit() {
	sm.cacheHitsTotal.Inc()
}

// RecordCacheMiss counts one response cache miss.
func (sm *SensorMetrics) RecordCacheMiss() {
	sm.cacheMissesTotal.Inc()
}
