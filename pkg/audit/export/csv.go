package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gatehouse-hq/keystone/pkg/audit"
)

// CSVExporter exports audit entries to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes audit entries to the provided writer in CSV format. List
// fields are flattened to JSON strings so the row stays one line.
func (e *CSVExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	for _, entry := range entries {
		if err := writer.Write(entryToRow(entry)); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(entries), err)
	}
	return nil
}

// headerRow returns the CSV header row.
func headerRow() []string {
	return []string{
		"run_id", "decision", "policy_version", "policy_hash", "model",
		"rule_id", "reason_codes", "flags",
		"received_at", "decided_at", "duration_ms",
		"raw_text_hash",
	}
}

// entryToRow converts an audit entry to a CSV row.
func entryToRow(entry *audit.Entry) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	formatJSON := func(v any) string {
		data, _ := json.Marshal(v)
		return string(data)
	}

	return []string{
		entry.RunID,
		entry.Decision,
		entry.PolicyVersion,
		entry.PolicyHash,
		entry.Model,
		entry.RuleID,
		formatJSON(entry.ReasonCodes),
		formatJSON(entry.Flags),
		formatTime(entry.ReceivedAt),
		formatTime(entry.DecidedAt),
		fmt.Sprintf("%d", entry.DurationMS),
		entry.RawTextHash,
	}
}
