// Package recorder persists Decision Records asynchronously so the decision
// path never blocks on disk or database writes.
//
// # Recording Flow
//
// Each record is enqueued on a buffered channel and a background worker
// persists it in three forms:
//
//  1. An outbox artifact under outbox/<decision>/<run_id>.json for
//     downstream consumers.
//  2. A replay bundle under runs/<run_id>/ capturing inputs, outputs, and
//     the exact policy snapshot.
//  3. An indexed entry in the audit store for querying and retention.
//
// The three writes are independent: a failure in one is logged and the
// others still happen, so a full outbox disk cannot silently lose the store
// entry.
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled:      true,
//	    AsyncBuffer:  1000,
//	    WriteTimeout: 5 * time.Second,
//	})
//	defer rec.Close()
//
//	rec.Record(ctx, decisionRecord, policyDoc)
//
// Close drains the channel before returning, so records accepted before
// shutdown are never dropped.
package recorder
