package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/cli"
	"gatehouse-hq/keystone/pkg/evals"
	"gatehouse-hq/keystone/pkg/policy"
)

var evalsFlags struct {
	suite      string
	policyFile string
	format     string
	output     string
}

var evalsCmd = &cobra.Command{
	Use:   "evals",
	Short: "Run an evaluation suite against the policy",
	Long: `Execute evaluation cases through the live pipeline.

Each case replays a recorded submission with canned extraction claims:
normalization, policy evaluation, and record assembly all run for real,
only the sensor is replaced by a fixture. A case fails when the decision
misses its expectation, produces a decision the case prohibits, or
violates a safety invariant. Invariant violations mean the pipeline or
policy is broken, never just a stale suite.

Case Format (JSONL, one case per line):
  {"id": "empty-input", "raw_text": "", "expected_decision": "REJECTED"}
  {"id": "clean-report",
   "raw_text": "Forklift clipped a rack in bay 4 ...",
   "extraction": {"extraction_confidence": 0.9, "fields": {...}},
   "expected_decision": "ACCEPTED",
   "must_not_be": "REJECTED"}

Examples:
  # Run a suite against the configured policy
  gatehouse evals --suite evals/cases.jsonl

  # Pin the policy file
  gatehouse evals --suite evals/cases.jsonl --policy policies/v1/policy.yaml

  # JSON report for CI
  gatehouse evals --suite evals/cases.jsonl --format json`,
	RunE: runEvals,
}

func init() {
	rootCmd.AddCommand(evalsCmd)

	evalsCmd.Flags().StringVarP(&evalsFlags.suite, "suite", "s", "", "evaluation suite file (JSONL)")
	evalsCmd.Flags().StringVarP(&evalsFlags.policyFile, "policy", "p", "", "override the policy file path")
	evalsCmd.Flags().StringVar(&evalsFlags.format, "format", "text", "output format: text, json")
	evalsCmd.Flags().StringVarP(&evalsFlags.output, "output", "o", "", "output file (default: stdout)")

	// Mark required flags - panic if this fails as it's a programming error
	if err := evalsCmd.MarkFlagRequired("suite"); err != nil {
		panic(fmt.Sprintf("failed to mark suite flag as required: %v", err))
	}
}

func runEvals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if evalsFlags.policyFile != "" {
		cfg.Policy.File = evalsFlags.policyFile
	}

	// Suppress pipeline logs while cases run; the report is the output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	cases, err := evals.LoadSuite(evalsFlags.suite)
	if err != nil {
		return cli.NewCommandError("evals", fmt.Errorf("failed to load suite: %w", err))
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases found in %s", evalsFlags.suite)
	}

	doc, err := policy.Load(cfg.Policy.Path())
	if err != nil {
		return cli.NewCommandError("evals", fmt.Errorf("failed to load policy: %w", err))
	}

	// Long suites stay interruptible; Ctrl+C cancels the run mid-suite.
	ctx := cli.SetupSignalHandler()

	report, err := evals.Run(ctx, cases, evals.Options{
		Document: doc,
		Logger:   logger,
		Version:  Version,
	})
	if err != nil {
		return cli.NewCommandError("evals", err)
	}

	output := os.Stdout
	if evalsFlags.output != "" {
		f, err := os.Create(evalsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if evalsFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(output, report); err != nil {
			return err
		}
	} else {
		printEvalReport(output, report)
	}

	if !report.Passed() {
		return cli.NewCommandError("evals", fmt.Errorf("%d of %d cases failed", report.Failed, report.Cases))
	}
	return nil
}

func printEvalReport(w io.Writer, report *evals.Report) {
	fmt.Fprintf(w, "Evaluating %d cases against policy %s...\n", report.Cases, report.PolicyVersion)
	fmt.Fprintln(w)

	for i := range report.Results {
		result := &report.Results[i]
		if result.Passed() {
			fmt.Fprintf(w, "✓ %s (%s)\n", result.ID, result.Decision)
			continue
		}

		fmt.Fprintf(w, "✗ %s (%s)\n", result.ID, result.Decision)
		for _, p := range result.Problems {
			fmt.Fprintf(w, "  %s: %s\n", p.Kind, p.Message)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d cases run, %d passed, %d failed\n",
		report.Cases, report.Cases-report.Failed, report.Failed)

	if report.Failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed cases:")
		for i := range report.Results {
			if !report.Results[i].Passed() {
				fmt.Fprintf(w, "  - %s\n", report.Results[i].ID)
			}
		}
	}
}
