package policy

import (
	"fmt"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/normalize"
)

var trackedFields = func() map[string]bool {
	m := make(map[string]bool, len(extract.TrackedFields))
	for _, f := range extract.TrackedFields {
		m[f] = true
	}
	return m
}()

// Validate checks a document for hard errors: shape violations and unknown
// names the engine cannot safely work around. A document that fails Validate
// must not be evaluated.
func Validate(doc *Document) *ErrorList {
	errs := NewErrorList()

	if len(doc.Rules) == 0 {
		errs.AddError(ErrorTypeStructural, "policy document has no rules", 0)
		return errs
	}

	seen := make(map[string]int, len(doc.Rules))
	for i := range doc.Rules {
		rule := &doc.Rules[i]

		if rule.ID == "" {
			errs.AddErrorWithSuggestion(ErrorTypeStructural,
				fmt.Sprintf("rule %d has no id", i+1), rule.Line,
				"give every rule a unique id for the audit trail")
		} else if prev, dup := seen[rule.ID]; dup {
			errs.AddError(ErrorTypeStructural,
				fmt.Sprintf("duplicate rule id %q (first used by rule %d)", rule.ID, prev+1), rule.Line)
		} else {
			seen[rule.ID] = i
		}

		if rule.When.hasAny && rule.When.hasAll {
			errs.AddErrorWithSuggestion(ErrorTypeStructural,
				fmt.Sprintf("rule %q: when must use exactly one of any/all", rule.ID), rule.When.Line,
				"split the rule in two, or merge the conditions under a single combinator")
		}

		for j := range rule.When.Any {
			validateCondition(errs, rule.ID, &rule.When.Any[j])
		}
		for j := range rule.When.All {
			validateCondition(errs, rule.ID, &rule.When.All[j])
		}

		if rule.Then.Decision != "" {
			if _, ok := ParseDecision(rule.Then.Decision); !ok {
				errs.AddErrorWithSuggestion(ErrorTypeSemantic,
					fmt.Sprintf("rule %q: unknown decision %q", rule.ID, rule.Then.Decision), rule.Then.Line,
					"decision must be ACCEPTED, ESCALATED or REJECTED")
			}
		}
	}

	return errs
}

func validateCondition(errs *ErrorList, ruleID string, c *Condition) {
	if c.Check == "" {
		errs.AddError(ErrorTypeStructural,
			fmt.Sprintf("rule %q: condition entry is missing the condition key", ruleID), c.Line)
		return
	}
	if !KnownCondition(c.Check) {
		errs.AddErrorWithSuggestion(ErrorTypeSemantic,
			fmt.Sprintf("rule %q: unknown condition %q", ruleID, c.Check), c.Line,
			"known conditions: empty_input, flag_present, field_missing, field_not_in, missing_required, no_blockers")
		return
	}

	switch c.Check {
	case CondFlagPresent:
		if c.Value == "" {
			errs.AddError(ErrorTypeStructural,
				fmt.Sprintf("rule %q: flag_present requires a value", ruleID), c.Line)
		}
	case CondFieldMissing:
		if c.Field == "" {
			errs.AddError(ErrorTypeStructural,
				fmt.Sprintf("rule %q: field_missing requires a field", ruleID), c.Line)
		}
	case CondFieldNotIn:
		if c.Field == "" {
			errs.AddError(ErrorTypeStructural,
				fmt.Sprintf("rule %q: field_not_in requires a field", ruleID), c.Line)
		}
	}
}

// Problem is a non-fatal finding from Lint. The engine behaves as documented
// even with these present; they exist to aid policy authoring.
type Problem struct {
	RuleID  string `json:"rule,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Lint reports suspicious-but-legal constructs: names the engine will drop
// or treat as never-present at evaluation time, and rules that can never
// fire or always fire.
func Lint(doc *Document) []Problem {
	var problems []Problem
	warn := func(ruleID, message string, line int) {
		problems = append(problems, Problem{RuleID: ruleID, Message: message, Line: line})
	}

	for i := range doc.Rules {
		rule := &doc.Rules[i]

		switch rule.When.Mode() {
		case ModeNone:
			warn(rule.ID, "when has neither any nor all; the rule can never fire", rule.When.Line)
		case ModeAny:
			if len(rule.When.Any) == 0 {
				warn(rule.ID, "any with no conditions can never fire", rule.When.Line)
			}
		case ModeAll:
			if len(rule.When.All) == 0 {
				warn(rule.ID, "all with no conditions always matches; later rules are unreachable", rule.When.Line)
			}
		}

		conds := rule.When.Conditions()
		for j := range conds {
			lintCondition(warn, rule.ID, &conds[j])
		}

		if rule.Then.Decision == "" {
			warn(rule.ID, "then has no decision; the engine defaults to ESCALATED", rule.Then.Line)
		}
		for _, rc := range rule.Then.ReasonCodes {
			if _, ok := ParseReasonCode(rc); !ok {
				warn(rule.ID, fmt.Sprintf("unknown reason code %q is dropped at evaluation time", rc), rule.Then.Line)
			}
		}
	}

	return problems
}

func lintCondition(warn func(string, string, int), ruleID string, c *Condition) {
	switch c.Check {
	case CondFlagPresent:
		if c.Value == "" {
			return
		}
		if _, ok := normalize.ParseFlag(c.Value); !ok {
			warn(ruleID, fmt.Sprintf("unknown flag %q is treated as never present", c.Value), c.Line)
		}
	case CondFieldMissing:
		if c.Field != "" && !trackedFields[c.Field] {
			warn(ruleID, fmt.Sprintf("field %q is not tracked; field_missing on it is always true", c.Field), c.Line)
		}
	case CondFieldNotIn:
		if c.Field != "" && !trackedFields[c.Field] {
			warn(ruleID, fmt.Sprintf("field %q is not tracked; field_not_in on it is always false", c.Field), c.Line)
		}
		if len(c.Values) == 0 {
			warn(ruleID, "field_not_in with an empty values list matches any present value", c.Line)
		}
	}
}
