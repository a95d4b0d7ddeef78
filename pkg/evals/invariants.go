package evals

import (
	"fmt"

	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/record"
)

// Invariant is a safety property every Decision Record must satisfy. Check
// returns nil when the property holds.
type Invariant struct {
	Name  string
	Check func(rec *record.DecisionRecord) error
}

// Invariants returns the properties enforced on every evaluation run. They
// encode the fail-safe posture: gaps and ambiguity may escalate or reject,
// they may never accept.
func Invariants() []Invariant {
	return []Invariant{
		{
			Name: "missing-required-never-accepted",
			Check: func(rec *record.DecisionRecord) error {
				missing := rec.Normalized.Report.MissingRequired
				if len(missing) > 0 && rec.Decision == policy.DecisionAccepted {
					return fmt.Errorf("ACCEPTED despite missing required fields %v", missing)
				}
				return nil
			},
		},
		{
			Name: "relative-time-never-accepted",
			Check: func(rec *record.DecisionRecord) error {
				if rec.Normalized.Report.Has(normalize.FlagRelativeTimeUnresolved) && rec.Decision == policy.DecisionAccepted {
					return fmt.Errorf("ACCEPTED with unresolved relative time")
				}
				return nil
			},
		},
		{
			Name: "rejected-has-reason-codes",
			Check: func(rec *record.DecisionRecord) error {
				if rec.Decision == policy.DecisionRejected && len(rec.Policy.ReasonCodes) == 0 {
					return fmt.Errorf("REJECTED without reason codes")
				}
				return nil
			},
		},
		{
			Name: "accepted-record-complete",
			Check: func(rec *record.DecisionRecord) error {
				if rec.Decision != policy.DecisionAccepted {
					return nil
				}
				if missing := rec.Normalized.Report.MissingRequired; len(missing) > 0 {
					return fmt.Errorf("ACCEPTED with missing fields %v", missing)
				}
				return nil
			},
		},
	}
}
