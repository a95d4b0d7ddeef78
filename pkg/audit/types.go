package audit

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"gatehouse-hq/keystone/pkg/record"
)

// Entry is the indexed projection of a Decision Record stored for querying.
// The full record travels along as raw JSON; the remaining fields exist so
// the store can filter without unmarshaling every row.
type Entry struct {
	RunID         string `json:"run_id"`
	Decision      string `json:"decision"`
	PolicyVersion string `json:"policy_version"`
	PolicyHash    string `json:"policy_hash"`
	Model         string `json:"model"`

	// RuleID is the first rule fired, or the engine's no-match sentinel.
	RuleID      string   `json:"rule_id"`
	ReasonCodes []string `json:"reason_codes"`
	Flags       []string `json:"flags"`

	ReceivedAt time.Time `json:"received_at"`
	DecidedAt  time.Time `json:"decided_at"`
	DurationMS int64     `json:"duration_ms"`

	// RawTextHash is the SHA-256 of the submitted raw text, letting an
	// auditor find every decision made over identical input without
	// storing the text twice.
	RawTextHash string `json:"raw_text_hash"`

	Record json.RawMessage `json:"record,omitempty"`
}

// NewEntry projects a Decision Record into its store entry.
func NewEntry(rec *record.DecisionRecord) (*Entry, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, NewRecorderError(rec.RunID, err)
	}

	ruleID := ""
	if len(rec.Policy.RuleIDsFired) > 0 {
		ruleID = rec.Policy.RuleIDsFired[0]
	}

	codes := make([]string, 0, len(rec.Policy.ReasonCodes))
	for _, rc := range rec.Policy.ReasonCodes {
		codes = append(codes, string(rc))
	}
	flags := make([]string, 0, len(rec.Normalized.Report.Flags))
	for _, f := range rec.Normalized.Report.Flags {
		flags = append(flags, string(f))
	}

	return &Entry{
		RunID:         rec.RunID,
		Decision:      string(rec.Decision),
		PolicyVersion: rec.PolicyVersion,
		PolicyHash:    rec.Build.PolicyHash,
		Model:         rec.Model,
		RuleID:        ruleID,
		ReasonCodes:   codes,
		Flags:         flags,
		ReceivedAt:    rec.ReceivedAt,
		DecidedAt:     rec.DecidedAt,
		DurationMS:    rec.DurationMS,
		RawTextHash:   HashString(rec.Input.RawText),
		Record:        data,
	}, nil
}

// Query defines filter parameters for querying audit entries.
type Query struct {
	Decision      string `json:"decision,omitempty"`
	RuleID        string `json:"rule_id,omitempty"`
	Model         string `json:"model,omitempty"`
	PolicyVersion string `json:"policy_version,omitempty"`

	// Since and Until bound DecidedAt, both inclusive.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder orders results by decided_at: "asc" or "desc" (default).
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage is the interface audit store backends implement.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an entry. Storing the same run id twice is an error.
	Store(ctx context.Context, entry *Entry) error

	// Query retrieves entries matching the filters, newest first unless
	// the query says otherwise. Returns an empty slice when nothing
	// matches.
	Query(ctx context.Context, query *Query) ([]*Entry, error)

	// Count returns the number of entries matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes entries matching the filters and returns how many it
	// removed. Retention enforcement is the intended caller.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes audit entries to a destination format.
type Exporter interface {
	Export(ctx context.Context, entries []*Entry, w io.Writer) error
}
