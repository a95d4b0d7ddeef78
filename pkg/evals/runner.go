package evals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gatehouse-hq/keystone/pkg/extract/static"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/pipeline"
	"gatehouse-hq/keystone/pkg/policy"
)

// ProblemKind classifies why a case failed.
type ProblemKind string

const (
	// ProblemExpectation is a mismatch against the case's expected decision.
	ProblemExpectation ProblemKind = "expectation"

	// ProblemProhibition means the case produced a decision it explicitly
	// forbids.
	ProblemProhibition ProblemKind = "prohibition"

	// ProblemInvariant is a violated safety property. These indicate a broken
	// pipeline or policy, never a stale suite.
	ProblemInvariant ProblemKind = "invariant"
)

// Problem is one reported failure for a case.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Message string      `json:"message"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	ID           string              `json:"id"`
	Decision     policy.Decision     `json:"decision"`
	RuleIDsFired []string            `json:"rule_ids_fired"`
	ReasonCodes  []policy.ReasonCode `json:"reason_codes"`
	Problems     []Problem           `json:"problems,omitempty"`
}

// Passed reports whether the case produced no problems.
func (r *CaseResult) Passed() bool {
	return len(r.Problems) == 0
}

// Report is the outcome of one suite run.
type Report struct {
	PolicyVersion string       `json:"policy_version"`
	Cases         int          `json:"cases"`
	Failed        int          `json:"failed"`
	Problems      int          `json:"problems"`
	Results       []CaseResult `json:"results"`
}

// Passed reports whether every case passed every check.
func (r *Report) Passed() bool {
	return r.Problems == 0
}

// Options configures a suite run.
type Options struct {
	// Document is the policy under evaluation. Required.
	Document *policy.Document

	// Logger is the parent logger. Defaults to slog.Default.
	Logger *slog.Logger

	// Version is the build version stamped into the run's records.
	Version string
}

// Run evaluates every case against the policy. Canned extraction claims are
// replayed through a fixture sensor keyed by the exact submission text, so
// the run never leaves the process.
func Run(ctx context.Context, cases []Case, opts Options) (*Report, error) {
	if opts.Document == nil {
		return nil, errors.New("policy document is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "evals")

	sensor := static.NewFixtureSensor()
	for i := range cases {
		if cases[i].Extraction != nil {
			sensor.Add(cases[i].RawText, cases[i].Extraction)
		}
	}

	g, err := pipeline.NewGatekeeper(pipeline.Options{
		Sensor:   sensor,
		Document: opts.Document,
		Logger:   logger,
		Version:  opts.Version,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		PolicyVersion: opts.Document.Version,
		Cases:         len(cases),
	}
	invariants := Invariants()

	for i := range cases {
		c := &cases[i]

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("suite interrupted after %d of %d cases: %w", i, len(cases), err)
		}

		env := intake.NewEnvelope(c.RawText, intake.MetadataFromMap(c.Metadata))
		rec, err := g.Process(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.ID, err)
		}

		result := CaseResult{
			ID:           c.ID,
			Decision:     rec.Decision,
			RuleIDsFired: rec.Policy.RuleIDsFired,
			ReasonCodes:  rec.Policy.ReasonCodes,
		}

		if c.ExpectedDecision != "" && string(rec.Decision) != c.ExpectedDecision {
			result.Problems = append(result.Problems, Problem{
				Kind:    ProblemExpectation,
				Message: fmt.Sprintf("decision %s, expected %s", rec.Decision, c.ExpectedDecision),
			})
		}
		if c.MustNotBe != "" && string(rec.Decision) == c.MustNotBe {
			result.Problems = append(result.Problems, Problem{
				Kind:    ProblemProhibition,
				Message: fmt.Sprintf("decision %s is prohibited for this case", rec.Decision),
			})
		}
		for _, inv := range invariants {
			if err := inv.Check(rec); err != nil {
				result.Problems = append(result.Problems, Problem{
					Kind:    ProblemInvariant,
					Message: fmt.Sprintf("%s: %v", inv.Name, err),
				})
			}
		}

		if result.Passed() {
			logger.Debug("case passed",
				"case_id", c.ID,
				"decision", rec.Decision,
			)
		} else {
			report.Failed++
			report.Problems += len(result.Problems)
			logger.Warn("case failed",
				"case_id", c.ID,
				"decision", rec.Decision,
				"problems", len(result.Problems),
			)
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}
