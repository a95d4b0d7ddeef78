// Package audit provides durable persistence and verification for Decision
// Records.
//
// # Architecture
//
// The audit system has four cooperating parts:
//
//  1. Storage backends - indexed Entry projections for querying (SQLite, memory)
//  2. Recorder - async writer producing every artifact for a run
//  3. Artifact writers - outbox JSON and replayable run bundles
//  4. Retention - scheduled pruning of aged store entries
//
// # Entries and artifacts
//
// Every Decision Record is persisted three ways:
//
//   - an Entry row in the store, indexed for queries (decision, rule, time)
//   - an outbox artifact outbox/<decision>/<run_id>.json for downstream systems
//   - a replay bundle runs/<run_id>/ from which the run can be re-executed
//
// The Entry carries the full record JSON alongside the indexed columns, so a
// query result is always sufficient to reconstruct the original record.
//
// # Recording flow
//
// Recording is asynchronous so a slow disk cannot block the decision path:
//
//	Pipeline -> Recorder.Record (buffered channel)
//	    -> worker: outbox artifact + run bundle + store entry
//
// Close drains the channel before returning, so records accepted before
// shutdown are never lost silently.
package audit
