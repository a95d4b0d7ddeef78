package record

import (
	"time"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
)

// SystemName identifies this system in every Decision Record it produces.
const SystemName = "Gatehouse Keystone"

// BuildInfo pins the code and policy a record was produced with.
type BuildInfo struct {
	System        string `json:"system"`
	Version       string `json:"version"`
	PolicyVersion string `json:"policy_version"`
	PolicyHash    string `json:"policy_hash"`
}

// DecisionRecord is the complete, self-contained account of one triage run.
// Once assembled it is immutable; downstream consumers read it, they never
// amend it.
type DecisionRecord struct {
	RunID    string          `json:"run_id"`
	Decision policy.Decision `json:"decision"`

	PolicyVersion string `json:"policy_version"`
	Model         string `json:"model"`

	ReceivedAt time.Time `json:"received_at"`
	DecidedAt  time.Time `json:"decided_at"`
	DurationMS int64     `json:"duration_ms"`

	Input      intake.Envelope  `json:"input"`
	Extraction extract.Result   `json:"extraction"`
	Normalized normalize.Bundle `json:"normalized"`
	Policy     policy.Outcome   `json:"policy"`

	Build BuildInfo `json:"build"`
}
