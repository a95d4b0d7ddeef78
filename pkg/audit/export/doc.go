// Package export writes audit entries in formats reviewers actually consume.
//
// Four exporters are provided:
//
//   - JSON: single entry as an object, multiple entries as an array, with
//     optional pretty-printing
//   - JSONL: one compact JSON object per line, suited to piping and to
//     very large exports
//   - CSV: flattened schema with an optional header row
//   - XLSX: a "Decisions" worksheet for spreadsheet review
//
// All exporters implement audit.Exporter and return ExportError on failure.
package export
