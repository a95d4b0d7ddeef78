package extract

import (
	"strings"
	"unicode/utf8"
)

// MaxCandidates caps how many candidates a sensor may propose per field.
// Anything beyond the cap is discarded by the adapters.
const MaxCandidates = 2

// UnknownSentinel is the reserved candidate value meaning "no supported value".
// It is compared case-insensitively and treated identically to an empty
// candidate list.
const UnknownSentinel = "UNKNOWN"

// Tracked field names, in canonical order.
const (
	FieldSummary         = "summary"
	FieldCategory        = "category"
	FieldLocation        = "location"
	FieldEventTime       = "event_time"
	FieldSeverity        = "severity"
	FieldPeopleInvolved  = "people_involved"
	FieldRequestedAction = "requested_action"
)

// TrackedFields lists every field name the pipeline understands, in canonical
// order. Sensors may propose other names; the pipeline ignores them.
var TrackedFields = []string{
	FieldSummary,
	FieldCategory,
	FieldLocation,
	FieldEventTime,
	FieldSeverity,
	FieldPeopleInvolved,
	FieldRequestedAction,
}

// EvidenceSpan is a claimed verbatim excerpt of the raw text. Offsets count
// runes and are set only when the excerpt was re-located in the source by
// exact substring search; a span without offsets is a claim that could not be
// verified.
type EvidenceSpan struct {
	Text  string `json:"text"`
	Start *int   `json:"start"`
	End   *int   `json:"end"`
}

// Located reports whether the excerpt was found verbatim in the raw text.
func (s *EvidenceSpan) Located() bool {
	return s != nil && s.Start != nil && s.End != nil
}

// Candidate is one proposed value for a field, with the sensor's confidence
// and its claimed evidence.
type Candidate struct {
	Value      any           `json:"value"`
	Evidence   *EvidenceSpan `json:"evidence,omitempty"`
	Confidence float64       `json:"confidence"`
}

// IsUnknown reports whether the candidate carries the reserved UNKNOWN
// sentinel instead of a real value.
func (c *Candidate) IsUnknown() bool {
	s, ok := c.Value.(string)
	return ok && strings.EqualFold(strings.TrimSpace(s), UnknownSentinel)
}

// Field is a named tracked field plus its ordered candidate list. A field
// with zero candidates is absent.
type Field struct {
	Name       string      `json:"field"`
	Candidates []Candidate `json:"candidates"`
}

// Best returns the highest-confidence candidate. Ties are broken by
// first-seen order via explicit comparison, so the result never depends on
// incidental container ordering. Returns nil for an absent field.
func (f *Field) Best() *Candidate {
	if f == nil || len(f.Candidates) == 0 {
		return nil
	}
	best := &f.Candidates[0]
	for i := 1; i < len(f.Candidates); i++ {
		if f.Candidates[i].Confidence > best.Confidence {
			best = &f.Candidates[i]
		}
	}
	return best
}

// Result is the sensor's structured output for one submission.
type Result struct {
	Model      string           `json:"model"`
	Confidence float64          `json:"extraction_confidence"`
	Fields     map[string]Field `json:"fields"`
	Notes      string           `json:"notes,omitempty"`
}

// Field returns the named field, or nil when the sensor proposed nothing
// for it.
func (r *Result) Field(name string) *Field {
	if r == nil {
		return nil
	}
	f, ok := r.Fields[name]
	if !ok {
		return nil
	}
	return &f
}

// AbsentResult builds the zero-confidence, all-fields-absent result used to
// recover from a sensor that violated its contract. Normalization and policy
// evaluation are designed to operate correctly on it.
func AbsentResult(model, notes string) *Result {
	fields := make(map[string]Field, len(TrackedFields))
	for _, name := range TrackedFields {
		fields[name] = Field{Name: name}
	}
	return &Result{
		Model:      model,
		Confidence: 0,
		Fields:     fields,
		Notes:      notes,
	}
}

// Locate re-locates a claimed excerpt in the raw text by exact substring
// search. An empty excerpt yields nil. A miss keeps the claimed text but
// leaves the offsets unset, which downstream treats as unverifiable.
func Locate(rawText, excerpt string) *EvidenceSpan {
	if excerpt == "" {
		return nil
	}
	idx := strings.Index(rawText, excerpt)
	if idx < 0 {
		return &EvidenceSpan{Text: excerpt}
	}
	start := utf8.RuneCountInString(rawText[:idx])
	end := start + utf8.RuneCountInString(excerpt)
	return &EvidenceSpan{Text: excerpt, Start: &start, End: &end}
}
