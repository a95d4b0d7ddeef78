package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gatehouse-hq/keystone/pkg/audit"
)

// timeLayout is fixed-width UTC, so lexicographic comparison in SQL matches
// chronological comparison. RFC3339Nano would trim trailing zeros and break
// that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging. Default: true.
	WALMode bool

	// BusyTimeout is how long a statement waits on a locked database.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/audit.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on an embedded SQLite database.
type SQLiteStorage struct {
	db         *sql.DB
	config     *SQLiteConfig
	insertStmt *sql.Stmt
	logger     *slog.Logger
}

// NewSQLiteStorage opens (creating if absent) the audit database at
// config.Path and initializes the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.store.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	// The pure-Go driver serializes writes anyway; a single connection
	// avoids SQLITE_BUSY churn between the recorder and the pruner.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas, creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	stmt, err := s.db.Prepare(insertEntry)
	if err != nil {
		return audit.NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insertStmt = stmt

	return nil
}

// Store persists an audit entry.
func (s *SQLiteStorage) Store(ctx context.Context, entry *audit.Entry) error {
	reasonCodes, _ := json.Marshal(entry.ReasonCodes)
	flags, _ := json.Marshal(entry.Flags)

	_, err := s.insertStmt.ExecContext(ctx,
		entry.RunID, entry.Decision, entry.PolicyVersion, entry.PolicyHash, entry.Model,
		entry.RuleID, string(reasonCodes), string(flags),
		entry.ReceivedAt.UTC().Format(timeLayout),
		entry.DecidedAt.UTC().Format(timeLayout),
		entry.DurationMS,
		entry.RawTextHash, string(entry.Record),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves entries matching the filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT run_id, decision, policy_version, policy_hash, model, rule_id, reason_codes, flags, received_at, decided_at, duration_ms, raw_text_hash, record_json FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	order := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		order = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY decided_at %s, run_id %s", order, order)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*audit.Entry{}
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of entries matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes entries matching the filters and returns how many went.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLiteStorage) Close() error {
	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("sqlite audit store closed")
	return nil
}

// buildWhereClause builds a WHERE clause (without the keyword) and its args
// from the query filters.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, query.Decision)
	}
	if query.RuleID != "" {
		conditions = append(conditions, "rule_id = ?")
		args = append(args, query.RuleID)
	}
	if query.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, query.Model)
	}
	if query.PolicyVersion != "" {
		conditions = append(conditions, "policy_version = ?")
		args = append(args, query.PolicyVersion)
	}
	if query.Since != nil {
		conditions = append(conditions, "decided_at >= ?")
		args = append(args, query.Since.UTC().Format(timeLayout))
	}
	if query.Until != nil {
		conditions = append(conditions, "decided_at <= ?")
		args = append(args, query.Until.UTC().Format(timeLayout))
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans one decisions row into an audit entry.
func scanRow(rows *sql.Rows) (*audit.Entry, error) {
	var entry audit.Entry
	var ruleID sql.NullString
	var reasonCodes, flags, receivedAt, decidedAt, recordJSON string

	err := rows.Scan(
		&entry.RunID, &entry.Decision, &entry.PolicyVersion, &entry.PolicyHash, &entry.Model,
		&ruleID, &reasonCodes, &flags,
		&receivedAt, &decidedAt, &entry.DurationMS,
		&entry.RawTextHash, &recordJSON,
	)
	if err != nil {
		return nil, err
	}

	if ruleID.Valid {
		entry.RuleID = ruleID.String
	}
	if reasonCodes != "" {
		json.Unmarshal([]byte(reasonCodes), &entry.ReasonCodes)
	}
	if flags != "" {
		json.Unmarshal([]byte(flags), &entry.Flags)
	}

	if entry.ReceivedAt, err = time.Parse(timeLayout, receivedAt); err != nil {
		return nil, fmt.Errorf("received_at %q does not parse: %w", receivedAt, err)
	}
	if entry.DecidedAt, err = time.Parse(timeLayout, decidedAt); err != nil {
		return nil, fmt.Errorf("decided_at %q does not parse: %w", decidedAt, err)
	}

	entry.Record = json.RawMessage(recordJSON)

	return &entry, nil
}
