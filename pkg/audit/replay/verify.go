package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/policy/engine"
)

// VerifyResult reports how a bundle replay compared to its recorded outputs.
type VerifyResult struct {
	RunID            string          `json:"run_id"`
	RecordedDecision policy.Decision `json:"recorded_decision"`
	ReplayDecision   policy.Decision `json:"replay_decision"`

	// Mismatches lists every divergence found, in check order. Empty means
	// the recorded decision still reproduces from the recorded inputs.
	Mismatches []string `json:"mismatches,omitempty"`
}

// OK reports whether the replay reproduced the bundle exactly.
func (r *VerifyResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify replays a run bundle: it re-parses the policy snapshot, checks its
// digest against config.json, re-runs normalization and policy evaluation on
// the recorded inputs, and compares the results to the recorded outputs.
// Unreadable or undecodable bundle files are errors; semantic divergence is
// reported through the result instead.
func Verify(dir string) (*VerifyResult, error) {
	result := &VerifyResult{RunID: filepath.Base(filepath.Clean(dir))}

	var cfg BundleConfig
	if err := readJSON(dir, configFile, &cfg); err != nil {
		return nil, err
	}

	snapshot := filepath.Join(dir, policySnapshot)
	source, err := os.ReadFile(snapshot)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", snapshot, err)
	}
	doc, err := policy.Parse(source, snapshot)
	if err != nil {
		return nil, fmt.Errorf("reparsing policy snapshot: %w", err)
	}

	if doc.Hash != cfg.PolicyHash {
		result.Mismatches = append(result.Mismatches,
			fmt.Sprintf("policy_hash: recorded %s, snapshot hashes to %s", cfg.PolicyHash, doc.Hash))
	}
	if errs := policy.Validate(doc); errs.HasErrors() {
		result.Mismatches = append(result.Mismatches,
			fmt.Sprintf("policy snapshot no longer validates: %v", errs.ToError()))
	}

	var envelope intake.Envelope
	if err := readJSON(dir, rawFile, &envelope); err != nil {
		return nil, err
	}
	var extraction extract.Result
	if err := readJSON(dir, extractionFile, &extraction); err != nil {
		return nil, err
	}
	var recordedBundle normalize.Bundle
	if err := readJSON(dir, normalizedFile, &recordedBundle); err != nil {
		return nil, err
	}
	var recordedOutcome policy.Outcome
	if err := readJSON(dir, policyFile, &recordedOutcome); err != nil {
		return nil, err
	}
	result.RecordedDecision = recordedOutcome.Decision

	bundle := normalize.Normalize(envelope.RawText, &extraction)
	if !sameJSON(bundle, &recordedBundle) {
		result.Mismatches = append(result.Mismatches,
			"normalized: re-run does not reproduce the recorded bundle")
	}

	eng := engine.NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	outcome := eng.Decide(doc, envelope.RawText, bundle)
	result.ReplayDecision = outcome.Decision

	if outcome.Decision != recordedOutcome.Decision {
		result.Mismatches = append(result.Mismatches,
			fmt.Sprintf("decision: recorded %s, replay produced %s", recordedOutcome.Decision, outcome.Decision))
	} else if !sameJSON(outcome, &recordedOutcome) {
		result.Mismatches = append(result.Mismatches,
			"outcome: re-evaluation does not reproduce the recorded policy outcome")
	}

	return result, nil
}

// sameJSON compares two values by their canonical JSON encoding, which
// sidesteps formatting differences between the recorded file and the
// in-memory recomputation.
func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
