package normalize

import "regexp"

// Relative-time expressions. A submission whose text matches one of these but
// carries no absolute event_time is ambiguous: policies cannot safely reason
// about "yesterday".
var relativeTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btoday\b`),
	regexp.MustCompile(`(?i)\byesterday\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\blast\s+(night|week|month|year)\b`),
	regexp.MustCompile(`(?i)\bthis\s+(morning|afternoon|evening|week|month)\b`),
	regexp.MustCompile(`(?i)\bnext\s+(week|month|year)\b`),
	regexp.MustCompile(`(?i)\bon\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
}

// Adversarial instruction patterns. The raw text is shown to the extraction
// sensor, so the normalizer screens the same text itself; a manipulated
// sensor cannot suppress the flag.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bignore (all|any)?\s*(previous|prior)\s+instructions\b`),
	regexp.MustCompile(`(?i)\baccept this\b`),
	regexp.MustCompile(`(?i)\bdo not escalate\b`),
	regexp.MustCompile(`(?i)\bforce accept\b`),
	regexp.MustCompile(`(?i)\bbypass\b`),
	regexp.MustCompile(`(?i)\bpolicy override\b`),
}

// HasRelativeTime reports whether the text contains a relative-time
// expression.
func HasRelativeTime(text string) bool {
	for _, p := range relativeTimePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// HasPromptInjection reports whether the text contains a prompt-injection
// attempt.
func HasPromptInjection(text string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
