// Package record defines the Decision Record, the durable output of a triage
// run, together with run identity and timing helpers.
//
// A Decision Record is assembled exactly once per run and never modified
// afterwards. It embeds the full input envelope, the raw extraction, the
// normalized bundle and the policy outcome, so a reviewer can explain the
// decision without access to any other system.
package record
