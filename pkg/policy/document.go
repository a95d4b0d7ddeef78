package policy

import (
	"gopkg.in/yaml.v3"
)

// ConditionKind enumerates the primitive predicates a rule may use. Unknown
// kinds evaluate false rather than aborting an evaluation.
type ConditionKind string

const (
	CondEmptyInput      ConditionKind = "empty_input"
	CondFlagPresent     ConditionKind = "flag_present"
	CondFieldMissing    ConditionKind = "field_missing"
	CondFieldNotIn      ConditionKind = "field_not_in"
	CondMissingRequired ConditionKind = "missing_required"
	CondNoBlockers      ConditionKind = "no_blockers"
)

var knownConditions = map[ConditionKind]bool{
	CondEmptyInput:      true,
	CondFlagPresent:     true,
	CondFieldMissing:    true,
	CondFieldNotIn:      true,
	CondMissingRequired: true,
	CondNoBlockers:      true,
}

// KnownCondition reports whether the kind is part of the condition
// vocabulary.
func KnownCondition(kind ConditionKind) bool {
	return knownConditions[kind]
}

// Condition is one leaf predicate: Check selects the kind, and Value, Field
// and Values carry that kind's arguments. Conditions are single-purpose and
// composable; a field_not_in never doubles as a missing check.
type Condition struct {
	Check  ConditionKind `yaml:"condition"`
	Value  string        `yaml:"value"`
	Field  string        `yaml:"field"`
	Values []string      `yaml:"values"`

	Line int `yaml:"-"`
}

// UnmarshalYAML decodes a condition and records its source line.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	type plain Condition
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Condition(p)
	c.Line = node.Line
	return nil
}

// WhenMode identifies which combinator a when clause used.
type WhenMode string

const (
	ModeAny  WhenMode = "any"
	ModeAll  WhenMode = "all"
	ModeNone WhenMode = ""
)

// WhenClause is a flat boolean combination of leaf conditions: `any` is a
// logical OR, `all` a logical AND. Deeper nesting is deliberately
// unsupported. A clause with neither key is vacuously false.
type WhenClause struct {
	Any []Condition
	All []Condition

	hasAny bool
	hasAll bool
	Line   int
}

// UnmarshalYAML decodes a when clause, remembering which keys were actually
// present so that `all: []` (vacuously true) stays distinguishable from an
// absent clause (vacuously false).
func (w *WhenClause) UnmarshalYAML(node *yaml.Node) error {
	var p struct {
		Any *[]Condition `yaml:"any"`
		All *[]Condition `yaml:"all"`
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*w = WhenClause{Line: node.Line}
	if p.Any != nil {
		w.Any = *p.Any
		w.hasAny = true
	}
	if p.All != nil {
		w.All = *p.All
		w.hasAll = true
	}
	return nil
}

// Mode returns the active combinator. When both keys are present, `any`
// takes precedence; the validator rejects such documents.
func (w *WhenClause) Mode() WhenMode {
	switch {
	case w.hasAny:
		return ModeAny
	case w.hasAll:
		return ModeAll
	default:
		return ModeNone
	}
}

// Conditions returns the active combinator's leaf list.
func (w *WhenClause) Conditions() []Condition {
	switch w.Mode() {
	case ModeAny:
		return w.Any
	case ModeAll:
		return w.All
	default:
		return nil
	}
}

// AnyOf builds a when clause that matches when any condition holds.
func AnyOf(conds ...Condition) WhenClause {
	return WhenClause{Any: conds, hasAny: true}
}

// AllOf builds a when clause that matches when every condition holds.
func AllOf(conds ...Condition) WhenClause {
	return WhenClause{All: conds, hasAll: true}
}

// Consequence is what firing a rule produces. Decision defaults to ESCALATED
// when omitted. Reason codes are strings here because the document is
// untrusted configuration; the engine maps them onto the closed enumeration
// and drops what it does not recognize.
type Consequence struct {
	Decision            string   `yaml:"decision"`
	ReasonCodes         []string `yaml:"reason_codes"`
	RequiredNextActions []string `yaml:"required_next_actions"`

	Line int `yaml:"-"`
}

// UnmarshalYAML decodes a consequence and records its source line.
func (t *Consequence) UnmarshalYAML(node *yaml.Node) error {
	type plain Consequence
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Consequence(p)
	t.Line = node.Line
	return nil
}

// Rule is one (condition, consequence) pair. Rules evaluate in document
// order and the first match wins.
type Rule struct {
	ID   string      `yaml:"id"`
	When WhenClause  `yaml:"when"`
	Then Consequence `yaml:"then"`

	Line int `yaml:"-"`
}

// UnmarshalYAML decodes a rule and records its source line.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	type plain Rule
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Rule(p)
	r.Line = node.Line
	return nil
}

// Document is an immutable policy snapshot: the parsed rules plus the exact
// source bytes they were parsed from and the SHA-256 hex digest of those
// bytes. A re-evaluation proves it ran against byte-identical policy text by
// comparing the digest.
type Document struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`

	Path   string `yaml:"-"`
	Source []byte `yaml:"-"`
	Hash   string `yaml:"-"`
}

// Rule returns the rule with the given id, or nil.
func (d *Document) Rule(id string) *Rule {
	for i := range d.Rules {
		if d.Rules[i].ID == id {
			return &d.Rules[i]
		}
	}
	return nil
}

// RuleCount returns the number of rules in the document.
func (d *Document) RuleCount() int {
	return len(d.Rules)
}
