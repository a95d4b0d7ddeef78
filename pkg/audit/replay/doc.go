// Package replay writes and verifies per-run audit bundles.
//
// A bundle under runs/<run_id>/ captures everything a run consumed and
// produced: the raw submission, the sensor extraction, the normalized bundle,
// the policy outcome, the run configuration, and a byte-identical snapshot of
// the policy document. Verify re-runs normalization and policy evaluation
// from the recorded inputs and reports any divergence from the recorded
// outputs, proving (or disproving) that a historical decision still
// reproduces.
package replay
