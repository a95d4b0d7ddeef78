package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled controls whether metrics are recorded. A disabled collector
	// registers nothing and every Record method is a no-op.
	Enabled bool

	// Namespace is the Prometheus metric namespace.
	// Defaults to "gatehouse".
	Namespace string

	// Subsystem is the Prometheus metric subsystem.
	// Defaults to "keystone".
	Subsystem string

	// DurationBuckets overrides the pipeline duration histogram buckets.
	DurationBuckets []float64
}

// Collector is the orchestrator for all Prometheus metrics in Gatehouse
// Keystone. It owns the registry, registers the metric families on
// construction, and provides recording methods for the pipeline, the policy
// engine, and the extraction sensor.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	// Pipeline metrics
	pipelineMetrics *PipelineMetrics

	// Policy metrics
	policyMetrics *PolicyMetrics

	// Sensor metrics
	sensorMetrics *SensorMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "gatehouse"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "keystone"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Sensor extraction dominates; normalize and decide are sub-ms.
		cfg.DurationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	if cfg.Enabled {
		c.pipelineMetrics = NewPipelineMetrics(cfg, registry)
		c.policyMetrics = NewPolicyMetrics(cfg, registry)
		c.sensorMetrics = NewSensorMetrics(cfg, registry)
	}

	return c
}

// enabled reports whether this collector records anything. A nil collector
// is a valid disabled collector.
func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordSubmission counts one submission entering the pipeline.
func (c *Collector) RecordSubmission() {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordSubmission()
}

// RecordPipelineDuration records the end-to-end duration of one submission.
func (c *Collector) RecordPipelineDuration(duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordDuration(duration)
}

// RecordStageDuration records the duration of a single pipeline stage
// ("extract", "normalize", "decide", "record").
func (c *Collector) RecordStageDuration(stage string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordStageDuration(stage, duration)
}

// RecordDecision counts a final decision by outcome
// (ACCEPTED, ESCALATED, REJECTED).
func (c *Collector) RecordDecision(decision string) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.RecordDecision(decision)
}

// RecordRuleHit counts a policy rule match. Rule cardinality is bounded by
// the policy document, so rule_id is safe as a label.
func (c *Collector) RecordRuleHit(ruleID string) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.RecordRuleHit(ruleID)
}

// RecordNoRuleMatch counts a fail-safe escalation where no rule matched.
func (c *Collector) RecordNoRuleMatch() {
	if !c.enabled() {
		return
	}
	c.policyMetrics.RecordNoRuleMatch()
}

// RecordQualityFlag counts one normalization quality flag occurrence.
func (c *Collector) RecordQualityFlag(flag string) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.RecordQualityFlag(flag)
}

// RecordSensorRequest counts one extraction call by model.
func (c *Collector) RecordSensorRequest(model string) {
	if !c.enabled() {
		return
	}
	c.sensorMetrics.RecordRequest(model)
}

// RecordSensorFailure counts an extraction failure that was recovered into
// an all-absent result.
func (c *Collector) RecordSensorFailure() {
	if !c.enabled() {
		return
	}
	c.sensorMetrics.RecordFailure()
}

// RecordSensorCacheHit counts a sensor cache hit.
func (c *Collector) RecordSensorCacheHit() {
	if !c.enabled() {
		return
	}
	c.sensorMetrics.RecordCacheHit()
}

// RecordSensorCacheMiss counts a sensor cache miss.
func (c *Collector) RecordSensorCacheMiss() {
	if !c.enabled() {
		return
	}
	c.sensorMetrics.RecordCacheMiss()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
