// Package metrics provides Prometheus metrics for Gatehouse Keystone.
//
// The Collector owns a dedicated registry and registers three metric
// families on construction:
//
//   - pipeline: submissions_total, pipeline_duration_seconds,
//     stage_duration_seconds{stage}
//   - policy: decisions_total{decision}, rule_hits_total{rule_id},
//     no_rule_match_total, quality_flags_total{flag}
//   - sensor: sensor_requests_total{model}, sensor_failures_total,
//     sensor_cache_hits_total, sensor_cache_misses_total
//
// All metrics carry the gatehouse_keystone_ prefix. Label cardinality is
// bounded by construction: decisions and flags are fixed enumerations, rule
// ids come from the loaded policy document, and model names from
// configuration.
//
// A nil *Collector is a valid disabled collector; every recording method is
// a no-op on it. The watch service exposes Handler() on the configured HTTP
// listener.
package metrics
