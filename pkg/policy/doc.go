// Package policy defines the declarative policy document and the closed
// vocabularies it may use.
//
// A policy document is a versioned, ordered list of rules. Each rule pairs a
// flat boolean condition clause (any/all over leaf predicates) with a
// consequence (decision, reason codes, required next actions). The grammar is
// deliberately flat: no nested boolean trees, no expression language. Every
// rule must be mechanically reviewable by a human auditor.
//
// Loading a document retains its exact source bytes and their SHA-256 digest,
// so any later re-evaluation can verify it ran against byte-identical policy
// text. Decisions and reason codes are closed enumerations; documents that
// reference unknown names are either rejected at load time (unknown
// decisions) or degraded at evaluation time (unknown reason codes and flags
// are dropped, unknown condition kinds evaluate false).
package policy
