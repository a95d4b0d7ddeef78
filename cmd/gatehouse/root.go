package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse Keystone - AI-assisted incident intake gatekeeper",
	Long: `Gatehouse Keystone triages workplace incident reports before they
reach a case queue.

Every submission runs through the same pipeline:
  - An extraction sensor proposes structured claims about the raw text
  - Normalization keeps only claims with verbatim evidence in the input
  - A versioned policy document decides the outcome, first match wins
  - The complete run is written down as an immutable Decision Record

The sensor only ever extracts; acceptance is decided by policy alone.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
