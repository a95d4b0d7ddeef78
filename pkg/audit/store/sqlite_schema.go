package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements creating the audit schema.
const Schema = `
-- Decision entries, one row per run
CREATE TABLE IF NOT EXISTS decisions (
    run_id TEXT PRIMARY KEY,
    decision TEXT NOT NULL,
    policy_version TEXT NOT NULL,
    policy_hash TEXT NOT NULL,
    model TEXT NOT NULL,

    rule_id TEXT,
    reason_codes TEXT,
    flags TEXT,

    received_at TEXT NOT NULL,
    decided_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,

    raw_text_hash TEXT NOT NULL,
    record_json TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

-- Indexes for the records and export queries
CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);
CREATE INDEX IF NOT EXISTS idx_decisions_decision ON decisions(decision);
CREATE INDEX IF NOT EXISTS idx_decisions_rule_id ON decisions(rule_id);
CREATE INDEX IF NOT EXISTS idx_decisions_model ON decisions(model);
CREATE INDEX IF NOT EXISTS idx_decisions_policy_version ON decisions(policy_version);
CREATE INDEX IF NOT EXISTS idx_decisions_raw_text_hash ON decisions(raw_text_hash);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the latest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// insertEntry is the prepared insert used by Store.
const insertEntry = `
INSERT INTO decisions (
    run_id, decision, policy_version, policy_hash, model,
    rule_id, reason_codes, flags,
    received_at, decided_at, duration_ms,
    raw_text_hash, record_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
