package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/cli"
	"gatehouse-hq/keystone/pkg/policy"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy documents",
	Long: `Validate policy documents for syntax and semantic errors.

The lint command parses policy files and reports everything a policy
author needs to fix before the engine will load the document:
  - YAML syntax errors
  - structural violations (missing rule ids, bad when clauses)
  - unknown decision, condition, flag, and reason code names
  - warnings for legal-but-suspicious constructs (dead rules, rules
    that always fire, names the engine drops at evaluation time)

Examples:
  # Lint a single document
  gatehouse lint --file policies/v1/policy.yaml

  # Lint every document under a directory
  gatehouse lint --dir policies/

  # Strict mode (warnings as errors)
  gatehouse lint --file policies/v1/policy.yaml --strict

  # JSON output for CI
  gatehouse lint --file policies/v1/policy.yaml --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewUsageError("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		// Both flat files and the versioned policies/<version>/policy.yaml
		// layout.
		for _, pattern := range []string{"*.yaml", "*.yml", "*/*.yaml", "*/*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintPolicyFile(file))
	}

	if lintFlags.format == "json" {
		return outputLintJSON(results)
	}
	return outputLintText(results, lintFlags.strict)
}

// LintResult is the lint outcome for a single policy file.
type LintResult struct {
	File     string        `json:"file"`
	Version  string        `json:"version,omitempty"`
	Valid    bool          `json:"valid"`
	Errors   []LintFinding `json:"errors,omitempty"`
	Warnings []LintFinding `json:"warnings,omitempty"`
}

// LintFinding is a single validation error or warning.
type LintFinding struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Rule       string `json:"rule,omitempty"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintPolicyFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, LintFinding{
			Message:  err.Error(),
			Severity: "error",
			Type:     string(policy.ErrorTypeIO),
		})
		return result
	}

	doc, err := policy.Parse(data, path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, findingsFromError(err)...)
		return result
	}
	result.Version = doc.Version

	if errs := policy.Validate(doc); errs.HasErrors() {
		result.Valid = false
		result.Errors = append(result.Errors, findingsFromError(errs)...)
	}

	for _, p := range policy.Lint(doc) {
		result.Warnings = append(result.Warnings, LintFinding{
			Line:     p.Line,
			Rule:     p.RuleID,
			Message:  p.Message,
			Severity: "warning",
		})
	}

	return result
}

// findingsFromError flattens structured policy errors into findings. Anything
// else becomes a single generic finding.
func findingsFromError(err error) []LintFinding {
	var list *policy.ErrorList
	if errors.As(err, &list) {
		findings := make([]LintFinding, 0, len(list.Errors))
		for _, e := range list.Errors {
			findings = append(findings, LintFinding{
				Line:       e.Line,
				Column:     e.Column,
				Message:    e.Message,
				Severity:   "error",
				Type:       string(e.Type),
				Suggestion: e.Suggestion,
			})
		}
		return findings
	}

	var single *policy.Error
	if errors.As(err, &single) {
		return []LintFinding{{
			Line:       single.Line,
			Column:     single.Column,
			Message:    single.Message,
			Severity:   "error",
			Type:       string(single.Type),
			Suggestion: single.Suggestion,
		}}
	}

	return []LintFinding{{Message: err.Error(), Severity: "error"}}
}

func outputLintText(results []LintResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All rules have valid conditions")
		}

		for _, finding := range result.Errors {
			fmt.Printf("✗ Error: %s", finding.Message)
			if finding.Line > 0 {
				fmt.Printf(" (line %d", finding.Line)
				if finding.Column > 0 {
					fmt.Printf(", col %d", finding.Column)
				}
				fmt.Print(")")
			}
			if finding.Type != "" {
				fmt.Printf(" [%s]", finding.Type)
			}
			fmt.Println()
			if finding.Suggestion != "" {
				fmt.Printf("  Suggestion: %s\n", finding.Suggestion)
			}
			totalErrors++
		}

		for _, finding := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", finding.Message)
			if finding.Rule != "" {
				fmt.Printf(" (rule %s", finding.Rule)
				if finding.Line > 0 {
					fmt.Printf(", line %d", finding.Line)
				}
				fmt.Print(")")
			} else if finding.Line > 0 {
				fmt.Printf(" (line %d)", finding.Line)
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputLintJSON(results []LintResult) error {
	if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
		if lintFlags.strict && len(result.Warnings) > 0 {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}
