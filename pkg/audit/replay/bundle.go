package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/record"
)

// DefaultDir is the bundle root when no directory is configured.
const DefaultDir = "runs"

// Bundle file names.
const (
	rawFile        = "raw.json"
	extractionFile = "extraction.json"
	normalizedFile = "normalized.json"
	policyFile     = "policy.json"
	configFile     = "config.json"
	policySnapshot = "policy.yaml"
)

// BundleConfig is the config.json of a run bundle: the knobs the run was made
// under plus the digest of the exact policy snapshot sitting next to it.
type BundleConfig struct {
	Model         string `json:"model"`
	PolicyVersion string `json:"policy_version"`
	PolicyPath    string `json:"policy_path,omitempty"`
	PolicyHash    string `json:"policy_hash"`
}

// Writer writes run bundles under a root directory.
type Writer struct {
	dir string
}

// NewWriter creates a bundle writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &Writer{dir: dir}
}

// WriteBundle persists the full replayable bundle for one run and returns the
// run directory. The policy document supplies the source snapshot; its hash
// goes into config.json so Verify can prove the snapshot is the text the run
// actually evaluated.
func (w *Writer) WriteBundle(rec *record.DecisionRecord, doc *policy.Document) (string, error) {
	runDir := filepath.Join(w.dir, rec.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory %s: %w", runDir, err)
	}

	if err := writeJSON(runDir, rawFile, rec.Input); err != nil {
		return "", err
	}
	if err := writeJSON(runDir, extractionFile, rec.Extraction); err != nil {
		return "", err
	}
	if err := writeJSON(runDir, normalizedFile, rec.Normalized); err != nil {
		return "", err
	}
	if err := writeJSON(runDir, policyFile, rec.Policy); err != nil {
		return "", err
	}

	snapshot := filepath.Join(runDir, policySnapshot)
	if err := os.WriteFile(snapshot, doc.Source, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", snapshot, err)
	}

	cfg := BundleConfig{
		Model:         rec.Model,
		PolicyVersion: rec.PolicyVersion,
		PolicyPath:    doc.Path,
		PolicyHash:    doc.Hash,
	}
	if err := writeJSON(runDir, configFile, cfg); err != nil {
		return "", err
	}

	return runDir, nil
}

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(dir, name string, v any) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
