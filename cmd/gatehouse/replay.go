package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/audit/replay"
	"gatehouse-hq/keystone/pkg/cli"
)

var replayFlags struct {
	runsDir string
	format  string
}

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Re-run a recorded decision from its bundle",
	Long: `Verify that a recorded decision still reproduces.

Replay loads the run bundle written at decision time, re-parses the
policy snapshot, checks its digest, re-runs normalization and policy
evaluation over the recorded inputs, and compares every output against
what was recorded. A clean replay proves the bundle is internally
consistent; a mismatch means the bundle was altered or the code has
drifted from the behavior that produced it.

The argument is a run id resolved under the configured runs directory,
or a path to a bundle directory.

Examples:
  # Verify one run
  gatehouse replay gh_20250601T120000Z_a1b2c3d4

  # Bundles kept somewhere else
  gatehouse replay gh_20250601T120000Z_a1b2c3d4 --runs-dir /var/lib/gatehouse/runs

  # Machine-readable result
  gatehouse replay gh_20250601T120000Z_a1b2c3d4 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: replayRun,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayFlags.runsDir, "runs-dir", "", "run bundle directory (default from config)")
	replayCmd.Flags().StringVar(&replayFlags.format, "format", "text", "output format: text, json")
}

func replayRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := installLogger(cfg); err != nil {
		return err
	}

	runsDir := replayFlags.runsDir
	if runsDir == "" {
		runsDir = cfg.Audit.RunsDir
	}

	// Accept either a bundle directory or a run id under runsDir.
	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Join(runsDir, args[0])
	}

	result, err := replay.Verify(dir)
	if err != nil {
		return cli.NewCommandError("replay", err)
	}

	if replayFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result); err != nil {
			return err
		}
	} else {
		fmt.Printf("Replaying %s...\n", result.RunID)
		fmt.Printf("Recorded decision: %s\n", result.RecordedDecision)
		fmt.Printf("Replay decision:   %s\n", result.ReplayDecision)
		fmt.Println()

		if result.OK() {
			fmt.Println("✓ Replay reproduces the recorded decision")
		} else {
			for _, m := range result.Mismatches {
				fmt.Printf("✗ %s\n", m)
			}
		}
	}

	if !result.OK() {
		return cli.NewCommandError("replay", fmt.Errorf("%d mismatch(es)", len(result.Mismatches)))
	}
	return nil
}
