// Package intake captures raw submissions exactly as received.
//
// Intake performs no interpretation: it wraps the raw text together with
// minimal metadata defaults so that every downstream stage sees the same
// untrusted input the submitter provided.
package intake
