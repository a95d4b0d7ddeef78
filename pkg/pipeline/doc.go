// Package pipeline wires the triage stages into a single gatekeeper.
//
// A Gatekeeper takes one submission envelope through sensor extraction,
// normalization and policy evaluation, assembles the Decision Record, and
// hands it to the recorder. The stages hold to one asymmetry: configuration
// problems (no policy document) abort construction, while runtime problems
// (sensor errors, nil results, panics, persistence failures) degrade and the
// run still produces a record. A submission that enters Process always comes
// out decided.
package pipeline
