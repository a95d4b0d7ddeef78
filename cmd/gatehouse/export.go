package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/audit/export"
	"gatehouse-hq/keystone/pkg/cli"
)

var exportFlags struct {
	format string
	output string
	pretty bool
	limit  int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export decision records",
	Long: `Export Decision Records from the audit store.

Formats:
  json   - single JSON array
  jsonl  - one JSON object per line
  csv    - summary columns, one row per record
  xlsx   - Excel workbook, one row per record

Filters are shared with the records command: --decision, --rule,
--model, --policy-version, --since, --until.

Examples:
  # Everything, one JSON object per line
  gatehouse export --format jsonl --output decisions.jsonl

  # Last month's rejections as a spreadsheet
  gatehouse export --format xlsx --output rejected.xlsx \
    --decision REJECTED --since 2025-05-01 --until 2025-06-01

  # CSV to stdout
  gatehouse export --format csv`,
	RunE: exportDecisions,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.format, "format", "jsonl", "export format: json, jsonl, csv, xlsx")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout; required for xlsx)")
	exportCmd.Flags().BoolVar(&exportFlags.pretty, "pretty", false, "indent JSON output")
	exportCmd.Flags().IntVar(&exportFlags.limit, "limit", reportScanLimit, "max records to export")

	// Same filter set as records query/report.
	exportCmd.Flags().StringVar(&recordsFlags.decision, "decision", "", "filter by decision (ACCEPTED, ESCALATED, REJECTED)")
	exportCmd.Flags().StringVar(&recordsFlags.rule, "rule", "", "filter by fired rule id")
	exportCmd.Flags().StringVar(&recordsFlags.model, "model", "", "filter by sensor model")
	exportCmd.Flags().StringVar(&recordsFlags.policyVersion, "policy-version", "", "filter by policy version")
	exportCmd.Flags().StringVar(&recordsFlags.since, "since", "", "earliest decision time (RFC3339 or YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&recordsFlags.until, "until", "", "latest decision time (RFC3339 or YYYY-MM-DD)")
}

func exportDecisions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := installLogger(cfg); err != nil {
		return err
	}

	var exporter audit.Exporter
	switch exportFlags.format {
	case "json":
		exporter = export.NewJSONExporter(exportFlags.pretty)
	case "jsonl":
		exporter = export.NewJSONLExporter()
	case "csv":
		exporter = export.NewCSVExporter(true)
	case "xlsx":
		exporter = export.NewXLSXExporter()
	default:
		return cli.NewUsageError("unsupported export format: %s (supported: json, jsonl, csv, xlsx)", exportFlags.format)
	}

	query, err := buildRecordsQuery()
	if err != nil {
		return err
	}
	query.Limit = exportFlags.limit
	query.Offset = 0
	// Exports read oldest first so appending to a previous export stays
	// chronological.
	query.SortOrder = "asc"

	storage, err := openAuditStore(cfg)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	defer storage.Close()

	entries, err := storage.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("export", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else if exportFlags.format == "xlsx" {
		return cli.NewUsageError("xlsx export requires --output")
	}

	if err := exporter.Export(cmd.Context(), entries, output); err != nil {
		return cli.NewCommandError("export", err)
	}

	if exportFlags.output != "" {
		fmt.Printf("✓ Exported %d records to %s\n", len(entries), exportFlags.output)
	}
	return nil
}
