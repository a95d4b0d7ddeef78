// Package normalize converts untrusted sensor claims into a canonical record
// plus a quality report.
//
// Normalization is the trust boundary of the pipeline: it selects the best
// candidate per tracked field, re-locates claimed evidence in the raw text by
// exact substring search, degrades malformed values to absence, and raises a
// fixed enumeration of quality flags that the policy engine can reason about.
// It never guesses and never fills in values the sensor did not propose.
//
// Normalize is a pure function: no I/O, deterministic output, inputs are
// never mutated. The raw text is additionally screened for relative-time
// expressions and prompt-injection attempts independently of whatever the
// sensor returned, so a manipulated sensor cannot suppress those signals.
package normalize
