package extract

// Claims is a sensor's raw, untrusted payload before the trust boundary is
// applied. The shape matches what remote models are asked to produce; nothing
// in it has been verified against the submission text yet.
type Claims struct {
	Confidence float64                       `json:"extraction_confidence"`
	Fields     map[string][]ClaimedCandidate `json:"fields"`
	Notes      string                        `json:"notes"`
}

// ClaimedCandidate is one claimed value with its claimed verbatim excerpt.
type ClaimedCandidate struct {
	Value      any     `json:"value"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Sanitize converts untrusted claims into a Result. Field names outside the
// tracked set are dropped, candidate lists are capped at MaxCandidates before
// the UNKNOWN sentinel is filtered (a wasted slot is the sensor's problem),
// confidences are clamped into [0, 1], and every evidence excerpt is
// re-located in the raw text by exact substring search. A nil payload
// degrades to the all-absent result.
func Sanitize(rawText, model string, claims *Claims) *Result {
	if claims == nil {
		return AbsentResult(model, "sensor returned no payload")
	}

	fields := make(map[string]Field, len(TrackedFields))
	for _, name := range TrackedFields {
		field := Field{Name: name}

		claimed := claims.Fields[name]
		if len(claimed) > MaxCandidates {
			claimed = claimed[:MaxCandidates]
		}
		for _, cc := range claimed {
			c := Candidate{Value: cc.Value, Confidence: clamp01(cc.Confidence)}
			if c.IsUnknown() {
				continue
			}
			c.Evidence = Locate(rawText, cc.Evidence)
			field.Candidates = append(field.Candidates, c)
		}

		fields[name] = field
	}

	return &Result{
		Model:      model,
		Confidence: clamp01(claims.Confidence),
		Fields:     fields,
		Notes:      claims.Notes,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
