// Package logging provides structured logger construction for Gatehouse
// Keystone.
//
// New builds a log/slog logger from configuration: level and format selection
// (JSON or text), optional source locations, and optional PII redaction.
// Redaction runs inside the handler, so every child logger derived with
// With("component", ...) inherits it. String attributes are scrubbed of email
// addresses, phone numbers, API keys, and bearer tokens; attributes whose key
// names sensitive material (token, secret, authorization, ...) are blanked
// regardless of content.
//
// Raw submission text is untrusted and may embed reporter contact details,
// which is why redaction defaults to on.
package logging
