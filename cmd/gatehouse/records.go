package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/cli"
)

// reportScanLimit bounds how many entries a report aggregates in one pass.
const reportScanLimit = 10000

var recordsFlags struct {
	decision      string
	rule          string
	model         string
	policyVersion string
	since         string
	until         string
	limit         int
	offset        int
	format        string
	output        string
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query the decision audit store",
	Long: `Query and summarize persisted Decision Records.

Subcommands:
  query   - List records matching filters
  report  - Aggregate statistics over matching records

Examples:
  # Everything rejected since June
  gatehouse records query --decision REJECTED --since 2025-06-01

  # Decisions made by one rule
  gatehouse records query --rule reject_prompt_injection

  # Export to a JSON file
  gatehouse records query --format json --output decisions.json

  # Summary report
  gatehouse records report --since 2025-06-01`,
}

var recordsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List decision records",
	Long: `List decision records matching the filters, newest first.

Time filters accept RFC3339 timestamps or bare dates (YYYY-MM-DD).`,
	RunE: queryRecords,
}

var recordsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize decision records",
	Long:  `Aggregate matching records by decision, rule, and quality flag.`,
	RunE:  reportRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsQueryCmd, recordsReportCmd)

	for _, c := range []*cobra.Command{recordsQueryCmd, recordsReportCmd} {
		c.Flags().StringVar(&recordsFlags.decision, "decision", "", "filter by decision (ACCEPTED, ESCALATED, REJECTED)")
		c.Flags().StringVar(&recordsFlags.rule, "rule", "", "filter by fired rule id")
		c.Flags().StringVar(&recordsFlags.model, "model", "", "filter by sensor model")
		c.Flags().StringVar(&recordsFlags.policyVersion, "policy-version", "", "filter by policy version")
		c.Flags().StringVar(&recordsFlags.since, "since", "", "earliest decision time (RFC3339 or YYYY-MM-DD)")
		c.Flags().StringVar(&recordsFlags.until, "until", "", "latest decision time (RFC3339 or YYYY-MM-DD)")
	}

	recordsQueryCmd.Flags().IntVar(&recordsFlags.limit, "limit", 100, "max results")
	recordsQueryCmd.Flags().IntVar(&recordsFlags.offset, "offset", 0, "pagination offset")
	recordsQueryCmd.Flags().StringVar(&recordsFlags.format, "format", "text", "output format: text, json")
	recordsQueryCmd.Flags().StringVarP(&recordsFlags.output, "output", "o", "", "output file (default: stdout)")
}

// buildRecordsQuery translates the shared filter flags into a store query.
func buildRecordsQuery() (*audit.Query, error) {
	query := &audit.Query{
		Decision:      recordsFlags.decision,
		RuleID:        recordsFlags.rule,
		Model:         recordsFlags.model,
		PolicyVersion: recordsFlags.policyVersion,
		Limit:         recordsFlags.limit,
		Offset:        recordsFlags.offset,
	}

	if recordsFlags.since != "" {
		t, err := parseTimeFlag(recordsFlags.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		query.Since = &t
	}
	if recordsFlags.until != "" {
		t, err := parseTimeFlag(recordsFlags.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		query.Until = &t
	}

	return query, nil
}

// parseTimeFlag accepts RFC3339 or a bare UTC date.
func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
}

func queryRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := installLogger(cfg); err != nil {
		return err
	}

	query, err := buildRecordsQuery()
	if err != nil {
		return err
	}

	storage, err := openAuditStore(cfg)
	if err != nil {
		return cli.NewCommandError("records", err)
	}
	defer storage.Close()

	entries, err := storage.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("records", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if recordsFlags.output != "" {
		f, err := os.Create(recordsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if recordsFlags.format == "json" {
		return outputRecordsJSON(output, entries)
	}
	return outputRecordsText(output, entries)
}

func outputRecordsText(output *os.File, entries []*audit.Entry) error {
	fmt.Fprintf(output, "Total records: %d\n", len(entries))
	fmt.Fprintln(output)

	if len(entries) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Run ID:   %s\n", entry.RunID)
		fmt.Fprintf(output, "Decided:  %s\n", entry.DecidedAt.Format(time.RFC3339))
		fmt.Fprintf(output, "Decision: %s\n", entry.Decision)
		fmt.Fprintf(output, "Rule:     %s\n", entry.RuleID)
		if len(entry.ReasonCodes) > 0 {
			fmt.Fprintf(output, "Reasons:  %s\n", strings.Join(entry.ReasonCodes, ", "))
		}
		if len(entry.Flags) > 0 {
			fmt.Fprintf(output, "Flags:    %s\n", strings.Join(entry.Flags, ", "))
		}
		fmt.Fprintf(output, "Policy:   %s (%s)\n", entry.PolicyVersion, shortHash(entry.PolicyHash))
		fmt.Fprintf(output, "Model:    %s\n", entry.Model)
		fmt.Fprintf(output, "Duration: %dms\n", entry.DurationMS)

		// Show limited output for large result sets
		if i >= 9 && len(entries) > 10 {
			remaining := len(entries) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputRecordsJSON(output *os.File, entries []*audit.Entry) error {
	result := map[string]any{
		"total_records": len(entries),
		"records":       entries,
	}
	return cli.NewFormatter(cli.FormatJSON).FormatTo(output, result)
}

func reportRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := installLogger(cfg); err != nil {
		return err
	}

	query, err := buildRecordsQuery()
	if err != nil {
		return err
	}
	query.Limit = reportScanLimit
	query.Offset = 0

	storage, err := openAuditStore(cfg)
	if err != nil {
		return cli.NewCommandError("records", err)
	}
	defer storage.Close()

	entries, err := storage.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("records", fmt.Errorf("query failed: %w", err))
	}

	return writeRecordsReport(os.Stdout, entries, query)
}

func writeRecordsReport(output *os.File, entries []*audit.Entry, query *audit.Query) error {
	fmt.Fprintln(output, "Decision Record Report")
	fmt.Fprintln(output, "======================")

	if query.Since != nil && query.Until != nil {
		fmt.Fprintf(output, "Time Range: %s to %s\n",
			query.Since.Format("2006-01-02"),
			query.Until.Format("2006-01-02"))
	}
	fmt.Fprintf(output, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(output)

	if len(entries) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	decisionCounts := make(map[string]int)
	ruleCounts := make(map[string]int)
	flagCounts := make(map[string]int)
	var totalDuration int64

	for _, entry := range entries {
		decisionCounts[entry.Decision]++
		if entry.RuleID != "" {
			ruleCounts[entry.RuleID]++
		}
		for _, f := range entry.Flags {
			flagCounts[f]++
		}
		totalDuration += entry.DurationMS
	}

	fmt.Fprintln(output, "Summary:")
	fmt.Fprintln(output, "--------")
	fmt.Fprintf(output, "Total Decisions: %d\n", len(entries))
	fmt.Fprintf(output, "Mean Duration: %dms\n", totalDuration/int64(len(entries)))
	fmt.Fprintln(output)

	fmt.Fprintln(output, "By Decision:")
	for _, decision := range []string{"ACCEPTED", "ESCALATED", "REJECTED"} {
		count := decisionCounts[decision]
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(len(entries)) * 100
		fmt.Fprintf(output, "  %s: %d (%.0f%%)\n", decision, count, pct)
	}
	fmt.Fprintln(output)

	fmt.Fprintln(output, "By Rule:")
	for _, rule := range sortedKeys(ruleCounts) {
		count := ruleCounts[rule]
		pct := float64(count) / float64(len(entries)) * 100
		fmt.Fprintf(output, "  %s: %d (%.0f%%)\n", rule, count, pct)
	}

	if len(flagCounts) > 0 {
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Quality Flags:")
		for _, flag := range sortedKeys(flagCounts) {
			fmt.Fprintf(output, "  %s: %d\n", flag, flagCounts[flag])
		}
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
