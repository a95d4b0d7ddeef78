package intake

import (
	"strings"
	"time"
)

// Metadata describes where a submission came from and who filed it. All fields
// except ReceivedAt are optional; unrecognized metadata keys are preserved in
// Extra so nothing the submitter provided is lost from the audit trail.
type Metadata struct {
	Source       string         `json:"source,omitempty"`
	SubmittedBy  string         `json:"submitted_by,omitempty"`
	BusinessUnit string         `json:"business_unit,omitempty"`
	ReceivedAt   time.Time      `json:"received_at"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Envelope is one raw submission plus its intake metadata. The raw text is
// attacker-controlled and must be treated as untrusted by every downstream
// stage.
type Envelope struct {
	RawText  string   `json:"raw_text"`
	Metadata Metadata `json:"metadata"`
}

// NewEnvelope wraps raw text in an envelope, stamping ReceivedAt with the
// current UTC time when the metadata does not already carry one.
func NewEnvelope(rawText string, md Metadata) *Envelope {
	if md.ReceivedAt.IsZero() {
		md.ReceivedAt = time.Now().UTC()
	}
	return &Envelope{RawText: rawText, Metadata: md}
}

// Empty reports whether the submission carries no usable text.
func (e *Envelope) Empty() bool {
	return strings.TrimSpace(e.RawText) == ""
}

// MetadataFromMap lifts a loosely typed metadata mapping (for example the
// metadata object of a JSON submission file) into a Metadata value. Known keys
// are promoted to their fields; everything else lands in Extra.
func MetadataFromMap(m map[string]any) Metadata {
	md := Metadata{}
	if m == nil {
		return md
	}
	for k, v := range m {
		switch k {
		case "source":
			md.Source = stringValue(v)
		case "submitted_by":
			md.SubmittedBy = stringValue(v)
		case "business_unit":
			md.BusinessUnit = stringValue(v)
		case "received_at":
			if s := stringValue(v); s != "" {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					md.ReceivedAt = t.UTC()
				}
			}
		default:
			if md.Extra == nil {
				md.Extra = make(map[string]any)
			}
			md.Extra[k] = v
		}
	}
	return md
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
