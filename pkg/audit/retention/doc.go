// Package retention enforces retention policies on the audit store.
//
// The pruner deletes store entries in two phases: age-based (older than a
// retention window) and count-based (oldest entries beyond a maximum count).
// A cron scheduler runs pruning cycles unattended.
//
// Pruning only touches the store index. Outbox artifacts and replay bundles
// are the durable record of each run and are left alone; their lifecycle
// belongs to the filesystem they were written to.
package retention
