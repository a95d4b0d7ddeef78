package policy

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func parseRules(t *testing.T, content string) *Document {
	t.Helper()
	var doc Document
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		t.Fatalf("failed to unmarshal document: %v", err)
	}
	return &doc
}

func TestValidate_CleanDocument(t *testing.T) {
	doc := parseRules(t, sampleDocument)
	errs := Validate(doc)
	if errs.HasErrors() {
		t.Errorf("expected no errors, got: %v", errs)
	}
	if errs.ToError() != nil {
		t.Error("ToError() on empty list should be nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "no rules",
			yaml:    `version: v1`,
			wantMsg: "no rules",
		},
		{
			name: "missing rule id",
			yaml: `
rules:
  - when:
      all: []
    then:
      decision: ACCEPTED
`,
			wantMsg: "has no id",
		},
		{
			name: "duplicate rule id",
			yaml: `
rules:
  - id: R-ONE
    when:
      all: []
    then:
      decision: ACCEPTED
  - id: R-ONE
    when:
      all: []
    then:
      decision: REJECTED
`,
			wantMsg: "duplicate rule id",
		},
		{
			name: "both any and all",
			yaml: `
rules:
  - id: R-BOTH
    when:
      any:
        - condition: empty_input
      all:
        - condition: no_blockers
    then:
      decision: ACCEPTED
`,
			wantMsg: "exactly one of any/all",
		},
		{
			name: "missing condition key",
			yaml: `
rules:
  - id: R-KEYLESS
    when:
      any:
        - value: SUMMARY_TOO_SHORT
    then:
      decision: ESCALATED
`,
			wantMsg: "missing the condition key",
		},
		{
			name: "unknown condition kind",
			yaml: `
rules:
  - id: R-ALIEN
    when:
      any:
        - condition: sentiment_negative
    then:
      decision: ESCALATED
`,
			wantMsg: "unknown condition",
		},
		{
			name: "flag_present without value",
			yaml: `
rules:
  - id: R-FLAGLESS
    when:
      any:
        - condition: flag_present
    then:
      decision: ESCALATED
`,
			wantMsg: "flag_present requires a value",
		},
		{
			name: "field_missing without field",
			yaml: `
rules:
  - id: R-FIELDLESS
    when:
      any:
        - condition: field_missing
    then:
      decision: ESCALATED
`,
			wantMsg: "field_missing requires a field",
		},
		{
			name: "field_not_in without field",
			yaml: `
rules:
  - id: R-NOFIELD
    when:
      any:
        - condition: field_not_in
          values: ["High"]
    then:
      decision: ESCALATED
`,
			wantMsg: "field_not_in requires a field",
		},
		{
			name: "unknown decision",
			yaml: `
rules:
  - id: R-MAYBE
    when:
      all: []
    then:
      decision: MAYBE
`,
			wantMsg: "unknown decision",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseRules(t, tt.yaml)
			errs := Validate(doc)
			if !errs.HasErrors() {
				t.Fatal("expected validation errors")
			}
			if !strings.Contains(errs.Error(), tt.wantMsg) {
				t.Errorf("expected %q in errors, got: %v", tt.wantMsg, errs)
			}
		})
	}
}

func TestValidate_ErrorsCarryLines(t *testing.T) {
	doc := parseRules(t, `
rules:
  - id: R-ALIEN
    when:
      any:
        - condition: sentiment_negative
    then:
      decision: ESCALATED
`)
	errs := Validate(doc)
	if !errs.HasErrors() {
		t.Fatal("expected validation errors")
	}
	if errs.Errors[0].Line == 0 {
		t.Error("expected the error to carry a source line")
	}
	if errs.Errors[0].Suggestion == "" {
		t.Error("expected unknown condition to carry a suggestion")
	}
}

func TestLint_CleanDocument(t *testing.T) {
	doc := parseRules(t, sampleDocument)
	if problems := Lint(doc); len(problems) != 0 {
		t.Errorf("expected no problems, got: %v", problems)
	}
}

func TestLint_Findings(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name: "when with neither key",
			yaml: `
rules:
  - id: R-EMPTY-WHEN
    when: {}
    then:
      decision: ACCEPTED
`,
			wantMsg: "never fire",
		},
		{
			name: "empty any",
			yaml: `
rules:
  - id: R-EMPTY-ANY
    when:
      any: []
    then:
      decision: ACCEPTED
`,
			wantMsg: "can never fire",
		},
		{
			name: "empty all shadows later rules",
			yaml: `
rules:
  - id: R-CATCH-ALL
    when:
      all: []
    then:
      decision: ACCEPTED
`,
			wantMsg: "always matches",
		},
		{
			name: "unknown flag",
			yaml: `
rules:
  - id: R-GHOST-FLAG
    when:
      any:
        - condition: flag_present
          value: GHOST_FLAG
    then:
      decision: ESCALATED
`,
			wantMsg: "never present",
		},
		{
			name: "untracked field in field_missing",
			yaml: `
rules:
  - id: R-WEATHER
    when:
      any:
        - condition: field_missing
          field: weather
    then:
      decision: ESCALATED
`,
			wantMsg: "not tracked",
		},
		{
			name: "field_not_in with empty values",
			yaml: `
rules:
  - id: R-VACUOUS
    when:
      any:
        - condition: field_not_in
          field: category
          values: []
    then:
      decision: ESCALATED
`,
			wantMsg: "matches any present value",
		},
		{
			name: "missing decision",
			yaml: `
rules:
  - id: R-QUIET
    when:
      any:
        - condition: empty_input
    then:
      reason_codes: [EMPTY_INPUT]
`,
			wantMsg: "defaults to ESCALATED",
		},
		{
			name: "unknown reason code",
			yaml: `
rules:
  - id: R-VIBES
    when:
      any:
        - condition: empty_input
    then:
      decision: REJECTED
      reason_codes: [VIBES_OFF]
`,
			wantMsg: "dropped at evaluation time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseRules(t, tt.yaml)
			problems := Lint(doc)
			if len(problems) == 0 {
				t.Fatal("expected lint findings")
			}
			found := false
			for _, p := range problems {
				if strings.Contains(p.Message, tt.wantMsg) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected %q among findings, got: %v", tt.wantMsg, problems)
			}
		})
	}
}

func TestLint_ReportsRuleID(t *testing.T) {
	doc := parseRules(t, `
rules:
  - id: R-GHOST-FLAG
    when:
      any:
        - condition: flag_present
          value: GHOST_FLAG
    then:
      decision: ESCALATED
`)
	problems := Lint(doc)
	if len(problems) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(problems))
	}
	if problems[0].RuleID != "R-GHOST-FLAG" {
		t.Errorf("expected finding to name the rule, got %q", problems[0].RuleID)
	}
}
