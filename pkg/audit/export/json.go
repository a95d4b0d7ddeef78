package export

import (
	"context"
	"encoding/json"
	"io"

	"gatehouse-hq/keystone/pkg/audit"
)

// JSONExporter exports audit entries to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes audit entries to the provided writer in JSON format.
// If Pretty is true, the JSON will be indented for readability.
//
// For a single entry, exports the entry as a JSON object.
// For multiple entries, exports an array of JSON objects.
func (e *JSONExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	if len(entries) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error

	if len(entries) == 1 {
		data, err = e.marshal(entries[0])
	} else {
		data, err = e.marshal(entries)
	}
	if err != nil {
		return audit.NewExportError("json", len(entries), err)
	}

	if _, err := w.Write(data); err != nil {
		return audit.NewExportError("json", len(entries), err)
	}
	return nil
}

func (e *JSONExporter) marshal(v any) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// JSONLExporter exports audit entries as JSON Lines: one compact object per
// line. The format appends cleanly and suits very large exports, since a
// consumer can process it line by line.
type JSONLExporter struct{}

// NewJSONLExporter creates a new JSON Lines exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Export writes one JSON object per line. No output is produced for an empty
// entry list.
func (e *JSONLExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	for i, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return audit.NewExportError("jsonl", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return audit.NewExportError("jsonl", i, err)
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return audit.NewExportError("jsonl", i, err)
		}
	}
	return nil
}
