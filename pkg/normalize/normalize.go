package normalize

import (
	"strings"
	"unicode/utf8"

	"gatehouse-hq/keystone/pkg/extract"
)

// MinSummaryLength is the minimum trimmed summary length, in runes, below
// which SUMMARY_TOO_SHORT is raised.
const MinSummaryLength = 12

// Normalize derives the canonical record and quality report from the sensor's
// claims. It is pure and deterministic: no I/O, inputs are never mutated, and
// malformed candidate values degrade to absence instead of failing the run.
// An empty raw text yields a fully absent record with every required field
// reported missing.
func Normalize(rawText string, extraction *extract.Result) *Bundle {
	summary, summaryEv := pickBest(rawText, extraction, extract.FieldSummary)
	category, categoryEv := pickBest(rawText, extraction, extract.FieldCategory)
	location, locationEv := pickBest(rawText, extraction, extract.FieldLocation)
	eventTime, _ := pickBest(rawText, extraction, extract.FieldEventTime)
	severity, severityEv := pickBest(rawText, extraction, extract.FieldSeverity)
	people, _ := pickBest(rawText, extraction, extract.FieldPeopleInvolved)
	action, _ := pickBest(rawText, extraction, extract.FieldRequestedAction)

	record := Record{
		Summary:         canonicalString(summary),
		Category:        canonicalString(category),
		Location:        canonicalString(location),
		EventTime:       canonicalString(eventTime),
		Severity:        canonicalString(severity),
		PeopleInvolved:  canonicalStringList(people),
		RequestedAction: canonicalString(action),
	}

	flags := make([]Flag, 0, 4)

	if record.Summary != "" && utf8.RuneCountInString(record.Summary) < MinSummaryLength {
		flags = append(flags, FlagSummaryTooShort)
	}
	if record.Summary != "" && !summaryEv {
		flags = append(flags, FlagNoEvidenceForSummary)
	}
	if record.Category != "" && !categoryEv {
		flags = append(flags, FlagNoEvidenceForCategory)
	}
	if record.Location != "" && !locationEv {
		flags = append(flags, FlagNoEvidenceForLocation)
	}
	if record.Severity != "" && !severityEv {
		flags = append(flags, FlagNoEvidenceForSeverity)
	}
	if HasRelativeTime(rawText) && record.EventTime == "" {
		flags = append(flags, FlagRelativeTimeUnresolved)
	}

	missing := make([]string, 0, len(RequiredFields))
	for _, name := range RequiredFields {
		if record.FieldAbsent(name) {
			missing = append(missing, name)
		}
	}

	if HasPromptInjection(rawText) {
		flags = append(flags, FlagPromptInjectionAttempt)
	}

	return &Bundle{
		Record: record,
		Report: Report{MissingRequired: missing, Flags: flags},
	}
}

// pickBest selects the field's best non-sentinel candidate and reports
// whether it carried evidence that re-locates verbatim in the raw text.
// Candidates holding the UNKNOWN sentinel are skipped entirely, the same as
// an empty candidate list. Ties on confidence keep first-seen order.
func pickBest(rawText string, extraction *extract.Result, field string) (any, bool) {
	f := extraction.Field(field)
	if f == nil {
		return nil, false
	}
	var best *extract.Candidate
	for i := range f.Candidates {
		c := &f.Candidates[i]
		if c.IsUnknown() {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Value, hasEvidence(rawText, best)
}

// hasEvidence applies the trust-boundary check: a candidate counts as
// evidenced only when its span text is non-blank and occurs verbatim in the
// raw text. Sensor-claimed offsets are never consulted, and matching is exact
// with no whitespace normalization, so a reworded excerpt does not count.
func hasEvidence(rawText string, c *extract.Candidate) bool {
	if c.Evidence == nil {
		return false
	}
	text := c.Evidence.Text
	if strings.TrimSpace(text) == "" {
		return false
	}
	return strings.Contains(rawText, text)
}

func canonicalString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// canonicalStringList passes list values through. Loosely typed lists (from
// JSON decoding) keep only their string elements; any other shape degrades to
// an empty list.
func canonicalStringList(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
