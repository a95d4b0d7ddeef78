package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PolicyMetrics tracks metrics related to policy evaluation outcomes.
//
// Metrics:
//   - gatehouse_keystone_decisions_total: Final decisions by outcome
//   - gatehouse_keystone_rule_hits_total: Rule matches by rule id
//   - gatehouse_keystone_no_rule_match_total: Fail-safe escalations
//   - gatehouse_keystone_quality_flags_total: Quality flags by flag name
type PolicyMetrics struct {
	// Final decisions by outcome
	decisionsTotal *prometheus.CounterVec

	// Rule matches by rule id
	ruleHitsTotal *prometheus.CounterVec

	// Fail-safe escalations where no rule matched
	noRuleMatchTotal prometheus.Counter

	// Quality flags raised during normalization
	qualityFlagsTotal *prometheus.CounterVec
}

// NewPolicyMetrics creates and registers policy metrics with the provided
// registry.
func NewPolicyMetrics(cfg *Config, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decisions_total",
				Help:      "Total number of final decisions by outcome",
			},
			[]string{"decision"},
		),

		ruleHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_hits_total",
				Help:      "Total number of policy rule matches",
			},
			[]string{"rule_id"},
		),

		noRuleMatchTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "no_rule_match_total",
				Help:      "Total number of fail-safe escalations where no rule matched",
			},
		),

		qualityFlagsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quality_flags_total",
				Help:      "Total number of quality flags raised during normalization",
			},
			[]string{"flag"},
		),
	}

	registry.MustRegister(
		pm.decisionsTotal,
		pm.ruleHitsTotal,
		pm.noRuleMatchTotal,
		pm.qualityFlagsTotal,
	)

	return pm
}

// RecordDecision counts a final decision by outcome.
func (pm *PolicyMetrics) RecordDecision(decision string) {
	pm.decisionsTotal.WithLabelValues(decision).Inc()
}

// RecordRuleHit counts a policy rule match.
func (pm *PolicyMetrics) RecordRuleHit(ruleID string) {
	pm.ruleHitsTotal.WithLabelValues(ruleID).Inc()
}

// RecordNoRuleMatch counts a fail-safe escalation.
func (pm *PolicyMetrics) RecordNoRuleMatch() {
	pm.noRuleMatchTotal.Inc()
}

// RecordQualityFlag counts one quality flag occurrence.
func (pm *PolicyMetrics) RecordQualityFlag(flag string) {
	pm.qualityFlagsTotal.WithLabelValues(flag).Inc()
}
