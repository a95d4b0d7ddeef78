// Package outbox writes the durable, transport-agnostic decision artifact
// that downstream systems pick up. One JSON file per run, filed under the
// decision, written exactly once.
package outbox
