package policy

// Decision is the terminal verdict for a submission.
type Decision string

const (
	DecisionAccepted  Decision = "ACCEPTED"
	DecisionEscalated Decision = "ESCALATED"
	DecisionRejected  Decision = "REJECTED"
)

// ParseDecision maps a string to a known decision. Unknown strings report
// ok=false.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionAccepted:
		return DecisionAccepted, true
	case DecisionEscalated:
		return DecisionEscalated, true
	case DecisionRejected:
		return DecisionRejected, true
	default:
		return "", false
	}
}

// ReasonCode is a closed enumeration justifying a decision. Policy documents
// may only reference these codes; unrecognized codes are dropped at
// evaluation time so a malformed-but-mostly-valid document still decides.
type ReasonCode string

const (
	ReasonEmptyInput                 ReasonCode = "EMPTY_INPUT"
	ReasonSummaryTooShort            ReasonCode = "SUMMARY_TOO_SHORT"
	ReasonMissingRequiredFields      ReasonCode = "MISSING_REQUIRED_FIELDS"
	ReasonNoEvidenceForCriticalField ReasonCode = "NO_EVIDENCE_FOR_CRITICAL_FIELD"
	ReasonRelativeTimeUnresolved     ReasonCode = "RELATIVE_TIME_UNRESOLVED"
	ReasonLocationAmbiguous          ReasonCode = "LOCATION_AMBIGUOUS"
	ReasonLowConfidenceCritical      ReasonCode = "LOW_CONFIDENCE_CRITICAL"
	ReasonPolicyBlocked              ReasonCode = "POLICY_BLOCKED"
	ReasonMissingLocation            ReasonCode = "MISSING_LOCATION"
)

var knownReasonCodes = map[string]ReasonCode{
	string(ReasonEmptyInput):                 ReasonEmptyInput,
	string(ReasonSummaryTooShort):            ReasonSummaryTooShort,
	string(ReasonMissingRequiredFields):      ReasonMissingRequiredFields,
	string(ReasonNoEvidenceForCriticalField): ReasonNoEvidenceForCriticalField,
	string(ReasonRelativeTimeUnresolved):     ReasonRelativeTimeUnresolved,
	string(ReasonLocationAmbiguous):          ReasonLocationAmbiguous,
	string(ReasonLowConfidenceCritical):      ReasonLowConfidenceCritical,
	string(ReasonPolicyBlocked):              ReasonPolicyBlocked,
	string(ReasonMissingLocation):            ReasonMissingLocation,
}

// ParseReasonCode maps a string to a known reason code. Unknown strings
// report ok=false.
func ParseReasonCode(s string) (ReasonCode, bool) {
	rc, ok := knownReasonCodes[s]
	return rc, ok
}

// Outcome is the policy engine's verdict plus its justification. RuleIDsFired
// holds exactly one rule id for a matched rule, or the NO_RULE_MATCH sentinel
// for the fail-safe outcome. ConfidenceBound is a fixed ceiling set by the
// engine, never derived from sensor confidence.
type Outcome struct {
	Decision            Decision     `json:"decision"`
	ReasonCodes         []ReasonCode `json:"reason_codes"`
	RuleIDsFired        []string     `json:"rule_ids_fired"`
	RequiredNextActions []string     `json:"required_next_actions"`
	ConfidenceBound     float64      `json:"confidence_bound"`
}
