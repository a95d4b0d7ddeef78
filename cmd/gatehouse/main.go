// Gatehouse Keystone is an AI-assisted gatekeeper for workplace incident
// reports.
//
// Every submission runs through the same pipeline:
//   - An extraction sensor proposes structured claims about the raw text
//   - Normalization keeps only claims with verbatim evidence in the input
//   - A versioned policy document decides the outcome, first match wins
//   - The complete run is written down as an immutable Decision Record
//
// The sensor only ever extracts; acceptance is decided by policy alone.
//
// Usage:
//
//	# Decide one submission
//	gatehouse run --file report.txt
//
//	# Watch an inbox directory as a service
//	gatehouse watch
//
//	# Validate a policy document
//	gatehouse lint --file policies/v1/policy.yaml
//
//	# Run an evaluation suite
//	gatehouse evals --suite evals/cases.jsonl
//
//	# Query recorded decisions
//	gatehouse records query --decision REJECTED
//
//	# Prove a recorded decision still reproduces
//	gatehouse replay gh_20250601T120000Z_a1b2c3d4
package main

func main() {
	Execute()
}
