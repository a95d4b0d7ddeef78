// Package engine evaluates policy documents over normalized submissions.
//
// Evaluation is first-match-wins over document order. Every leaf condition
// is a pure predicate; malformed or unrecognized leaves evaluate false so a
// bad condition can never abort the evaluation of the remaining rules. When
// no rule matches at all, the engine returns the fail-safe escalation: human
// review is the only safe default for unmatched input, since it neither
// finalizes nor forecloses on it.
package engine
