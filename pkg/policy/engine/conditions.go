package engine

import (
	"strings"

	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
)

// evalWhen evaluates a flat when clause. An `any` clause with no conditions
// never matches; an `all` clause with no conditions vacuously matches; a
// clause with neither key never matches.
func evalWhen(w *policy.WhenClause, rawText string, bundle *normalize.Bundle) bool {
	switch w.Mode() {
	case policy.ModeAny:
		for i := range w.Any {
			if evalCondition(&w.Any[i], rawText, bundle) {
				return true
			}
		}
		return false
	case policy.ModeAll:
		for i := range w.All {
			if !evalCondition(&w.All[i], rawText, bundle) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// evalCondition evaluates one leaf predicate. Malformed or unrecognized
// leaves evaluate false; they must never abort evaluation of the remaining
// rules.
func evalCondition(c *policy.Condition, rawText string, bundle *normalize.Bundle) bool {
	switch c.Check {
	case policy.CondEmptyInput:
		return strings.TrimSpace(rawText) == ""

	case policy.CondFlagPresent:
		if c.Value == "" {
			return false
		}
		flag, ok := normalize.ParseFlag(c.Value)
		if !ok {
			// Unknown flags are never present.
			return false
		}
		return bundle.Report.Has(flag)

	case policy.CondFieldMissing:
		if c.Field == "" {
			return false
		}
		return bundle.Record.FieldAbsent(c.Field)

	case policy.CondFieldNotIn:
		if c.Field == "" {
			return false
		}
		s, present := bundle.Record.FieldString(c.Field)
		if !present {
			// A missing field is field_missing's responsibility, not a
			// membership violation.
			return false
		}
		for _, v := range c.Values {
			if s == v {
				return false
			}
		}
		return true

	case policy.CondMissingRequired:
		return len(bundle.Report.MissingRequired) > 0

	case policy.CondNoBlockers:
		return len(bundle.Report.MissingRequired) == 0 &&
			!bundle.Report.Has(normalize.FlagRelativeTimeUnresolved)

	default:
		return false
	}
}
