package engine

import (
	"log/slog"

	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
)

const (
	// MatchedConfidenceBound caps the certainty of any matched rule. It is
	// a fixed ceiling, never derived from sensor confidence.
	MatchedConfidenceBound = 0.75

	// FailSafeConfidenceBound is the certainty of the fail-safe outcome.
	FailSafeConfidenceBound = 0.5
)

// NoRuleMatchID is the rule id sentinel recorded when no rule matched.
const NoRuleMatchID = "NO_RULE_MATCH"

// UnknownRuleID stands in for rules whose id is blank.
const UnknownRuleID = "UNKNOWN_RULE"

// FailSafeAction is the required next action of the fail-safe outcome.
const FailSafeAction = "Review input and policy configuration."

// Engine evaluates policy documents. It carries no state between calls
// beyond a logger; Decide is a pure function of its inputs and is safe for
// any number of concurrent evaluations over a shared document.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With("component", "policy-engine")}
}

// Decide evaluates the document's rules in order against the raw text and
// normalized bundle. The first rule whose when clause holds determines the
// outcome; when no rule matches, the result is the fail-safe escalation.
// The engine never defaults to ACCEPTED or REJECTED.
func (e *Engine) Decide(doc *policy.Document, rawText string, bundle *normalize.Bundle) *policy.Outcome {
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		if !evalWhen(&rule.When, rawText, bundle) {
			continue
		}
		e.logger.Debug("rule matched",
			"rule_id", rule.ID,
			"position", i+1,
		)
		return e.buildOutcome(rule)
	}

	e.logger.Warn("no rule matched; escalating fail-safe",
		"rules_evaluated", len(doc.Rules),
	)
	return FailSafe()
}

// buildOutcome maps a matched rule's consequence onto the closed
// vocabularies. Unrecognized reason codes are dropped with a warning rather
// than failing the run; a blank or unparsable decision escalates.
func (e *Engine) buildOutcome(rule *policy.Rule) *policy.Outcome {
	ruleID := rule.ID
	if ruleID == "" {
		ruleID = UnknownRuleID
	}

	decision := policy.DecisionEscalated
	if rule.Then.Decision != "" {
		if d, ok := policy.ParseDecision(rule.Then.Decision); ok {
			decision = d
		} else {
			e.logger.Warn("unknown decision in matched rule; escalating",
				"rule_id", ruleID,
				"decision", rule.Then.Decision,
			)
		}
	}

	codes := make([]policy.ReasonCode, 0, len(rule.Then.ReasonCodes))
	for _, raw := range rule.Then.ReasonCodes {
		rc, ok := policy.ParseReasonCode(raw)
		if !ok {
			e.logger.Warn("dropping unrecognized reason code",
				"rule_id", ruleID,
				"reason_code", raw,
			)
			continue
		}
		codes = append(codes, rc)
	}

	actions := make([]string, 0, len(rule.Then.RequiredNextActions))
	actions = append(actions, rule.Then.RequiredNextActions...)

	return &policy.Outcome{
		Decision:            decision,
		ReasonCodes:         codes,
		RuleIDsFired:        []string{ruleID},
		RequiredNextActions: actions,
		ConfidenceBound:     MatchedConfidenceBound,
	}
}

// FailSafe returns the outcome used when no rule matches.
func FailSafe() *policy.Outcome {
	return &policy.Outcome{
		Decision:            policy.DecisionEscalated,
		ReasonCodes:         []policy.ReasonCode{policy.ReasonPolicyBlocked},
		RuleIDsFired:        []string{NoRuleMatchID},
		RequiredNextActions: []string{FailSafeAction},
		ConfidenceBound:     FailSafeConfidenceBound,
	}
}
