// Package evals runs regression suites against the triage pipeline.
//
// A suite is a JSONL file of cases: raw submission text, optional canned
// extraction claims, and expectations about the decision. Runs are hermetic;
// canned claims are replayed through a fixture sensor, so no case ever
// reaches a remote model and results are reproducible byte for byte.
//
// Two kinds of checks apply to every case. Expectations (expected_decision,
// must_not_be) describe the suite author's intent and catch policy
// regressions. Invariants are safety properties of the system itself; they
// hold for every record regardless of what the case expects, and a violation
// means the pipeline is broken, not the suite.
package evals
