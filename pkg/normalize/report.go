package normalize

// Flag is a fixed-enumeration quality signal about the canonical record.
// Flags are never free text, so policy rules over them stay decidable.
type Flag string

const (
	FlagSummaryTooShort        Flag = "SUMMARY_TOO_SHORT"
	FlagLocationAmbiguous      Flag = "LOCATION_AMBIGUOUS"
	FlagRelativeTimeUnresolved Flag = "RELATIVE_TIME_UNRESOLVED"
	FlagNoEvidenceForSeverity  Flag = "NO_EVIDENCE_FOR_SEVERITY"
	FlagNoEvidenceForCategory  Flag = "NO_EVIDENCE_FOR_CATEGORY"
	FlagNoEvidenceForLocation  Flag = "NO_EVIDENCE_FOR_LOCATION"
	FlagNoEvidenceForSummary   Flag = "NO_EVIDENCE_FOR_SUMMARY"
	FlagPromptInjectionAttempt Flag = "PROMPT_INJECTION_ATTEMPT"
)

var knownFlags = map[string]Flag{
	string(FlagSummaryTooShort):        FlagSummaryTooShort,
	string(FlagLocationAmbiguous):      FlagLocationAmbiguous,
	string(FlagRelativeTimeUnresolved): FlagRelativeTimeUnresolved,
	string(FlagNoEvidenceForSeverity):  FlagNoEvidenceForSeverity,
	string(FlagNoEvidenceForCategory):  FlagNoEvidenceForCategory,
	string(FlagNoEvidenceForLocation):  FlagNoEvidenceForLocation,
	string(FlagNoEvidenceForSummary):   FlagNoEvidenceForSummary,
	string(FlagPromptInjectionAttempt): FlagPromptInjectionAttempt,
}

// ParseFlag maps a string to a known quality flag. Unknown names report
// ok=false; the policy engine treats those as never present.
func ParseFlag(s string) (Flag, bool) {
	f, ok := knownFlags[s]
	return f, ok
}

// Report is what normalization could not verify about a submission. It is
// computed once and never mutated afterwards.
type Report struct {
	MissingRequired []string `json:"missing_required"`
	Flags           []Flag   `json:"flags"`
}

// Has reports whether the named flag was raised.
func (r *Report) Has(flag Flag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Bundle pairs the canonical record with its quality report.
type Bundle struct {
	Record Record `json:"record"`
	Report Report `json:"report"`
}
