package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/cli"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/pipeline"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/record"
	"gatehouse-hq/keystone/pkg/telemetry/metrics"
)

// maxStdinBytes caps how much submission text run reads from a pipe, matching
// the intake file limit.
const maxStdinBytes = 1 * 1024 * 1024

var runFlags struct {
	file          string
	text          string
	source        string
	submittedBy   string
	businessUnit  string
	model         string
	policyFile    string
	policyVersion string
	noRecord      bool
	format        string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Triage one submission",
	Long: `Decide one incident submission and print the outcome.

The submission comes from --file, --text, or stdin. It runs through the
full pipeline: sensor extraction, normalization, policy evaluation, and
Decision Record assembly. Audit artifacts are written unless recording
is disabled in config or by --no-record.

Examples:
  # Decide a text file
  gatehouse run --file report.txt

  # Decide a JSON submission carrying its own metadata
  gatehouse run --file report.json

  # Decide inline text
  gatehouse run --text "Forklift clipped a rack in Warehouse 12 yesterday."

  # Decide from a pipe
  cat report.txt | gatehouse run --source email

  # Pin a policy version
  gatehouse run --file report.txt --policy-version v2

  # Full Decision Record as JSON
  gatehouse run --file report.txt --format json

  # Validate config and policy without deciding
  gatehouse run --dry-run`,
	RunE: runSubmission,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.file, "file", "f", "", "submission file (.txt or .json)")
	runCmd.Flags().StringVarP(&runFlags.text, "text", "t", "", "submission text")
	runCmd.Flags().StringVar(&runFlags.source, "source", "cli", "submission source recorded in metadata")
	runCmd.Flags().StringVar(&runFlags.submittedBy, "submitted-by", "", "reporter recorded in metadata")
	runCmd.Flags().StringVar(&runFlags.businessUnit, "business-unit", "", "business unit recorded in metadata")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "override the sensor model")
	runCmd.Flags().StringVar(&runFlags.policyFile, "policy", "", "override the policy file path")
	runCmd.Flags().StringVar(&runFlags.policyVersion, "policy-version", "", "override the policy version")
	runCmd.Flags().BoolVar(&runFlags.noRecord, "no-record", false, "decide without writing audit artifacts")
	runCmd.Flags().StringVar(&runFlags.format, "format", "text", "output format: text, json")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and policy without deciding")
}

func runSubmission(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.policyFile != "" {
		cfg.Policy.File = runFlags.policyFile
	}
	if runFlags.policyVersion != "" {
		cfg.Policy.Version = runFlags.policyVersion
		cfg.Policy.File = ""
	}
	if runFlags.model != "" {
		cfg.Sensor.Model = runFlags.model
	}

	logger, err := installLogger(cfg)
	if err != nil {
		return err
	}

	doc, err := policy.Load(cfg.Policy.Path())
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load policy: %w", err))
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		fmt.Printf("✓ Policy %s valid (%d rules)\n", doc.Version, len(doc.Rules))
		return nil
	}

	env, err := readSubmission()
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	collector := metrics.NewCollector(&metrics.Config{Enabled: cfg.Telemetry.Metrics.Enabled}, nil)

	sensor, err := buildSensor(cfg, collector, logger)
	if err != nil {
		return cli.NewConfigError("sensor", err.Error())
	}

	opts := pipeline.Options{
		Sensor:   sensor,
		Document: doc,
		Metrics:  collector,
		Logger:   logger,
		Model:    cfg.Sensor.Model,
		Version:  Version,
	}

	if cfg.Audit.Enabled && !runFlags.noRecord {
		storage, err := openAuditStore(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer storage.Close()

		auditRecorder := newAuditRecorder(storage, cfg)
		defer auditRecorder.Close()
		opts.Recorder = auditRecorder
	}

	g, err := pipeline.NewGatekeeper(opts)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	rec, err := g.Process(cmd.Context(), env)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if runFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, rec)
	}

	printDecision(os.Stdout, rec)
	return nil
}

// readSubmission builds the intake envelope from --file, --text, or stdin.
// Metadata flags win over metadata carried by a JSON submission file only
// when explicitly set.
func readSubmission() (*intake.Envelope, error) {
	if runFlags.file != "" && runFlags.text != "" {
		return nil, cli.NewUsageError("--file and --text are mutually exclusive")
	}

	if runFlags.file != "" {
		env, err := intake.ReadSubmissionFile(runFlags.file, runFlags.source)
		if err != nil {
			return nil, err
		}
		if runFlags.submittedBy != "" {
			env.Metadata.SubmittedBy = runFlags.submittedBy
		}
		if runFlags.businessUnit != "" {
			env.Metadata.BusinessUnit = runFlags.businessUnit
		}
		return env, nil
	}

	md := intake.Metadata{
		Source:       runFlags.source,
		SubmittedBy:  runFlags.submittedBy,
		BusinessUnit: runFlags.businessUnit,
	}

	if runFlags.text != "" {
		return intake.NewEnvelope(runFlags.text, md), nil
	}

	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return intake.NewEnvelope(string(data), md), nil
}

func printDecision(w io.Writer, rec *record.DecisionRecord) {
	fmt.Fprintf(w, "Decision: %s\n", rec.Decision)
	fmt.Fprintf(w, "Run ID:   %s\n", rec.RunID)
	fmt.Fprintf(w, "Policy:   %s (%s)\n", rec.PolicyVersion, shortHash(rec.Build.PolicyHash))
	fmt.Fprintf(w, "Model:    %s\n", rec.Model)

	if len(rec.Policy.RuleIDsFired) > 0 {
		fmt.Fprintf(w, "Rule:     %s\n", strings.Join(rec.Policy.RuleIDsFired, ", "))
	}
	if len(rec.Policy.ReasonCodes) > 0 {
		codes := make([]string, 0, len(rec.Policy.ReasonCodes))
		for _, rc := range rec.Policy.ReasonCodes {
			codes = append(codes, string(rc))
		}
		fmt.Fprintf(w, "Reasons:  %s\n", strings.Join(codes, ", "))
	}
	if len(rec.Normalized.Report.Flags) > 0 {
		flags := make([]string, 0, len(rec.Normalized.Report.Flags))
		for _, f := range rec.Normalized.Report.Flags {
			flags = append(flags, string(f))
		}
		fmt.Fprintf(w, "Flags:    %s\n", strings.Join(flags, ", "))
	}
	for _, action := range rec.Policy.RequiredNextActions {
		fmt.Fprintf(w, "Next:     %s\n", action)
	}
	fmt.Fprintf(w, "Duration: %dms\n", rec.DurationMS)
}
