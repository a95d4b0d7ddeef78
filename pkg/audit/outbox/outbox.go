package outbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gatehouse-hq/keystone/pkg/record"
)

// DefaultDir is the outbox root when no directory is configured.
const DefaultDir = "outbox"

// Writer files Decision Records as JSON artifacts under
// <dir>/<decision-lowercase>/<run_id>.json.
type Writer struct {
	dir string
}

// NewWriter creates an outbox writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &Writer{dir: dir}
}

// Write persists the record's outbox artifact and returns its path. An
// artifact is written exactly once: a second write for the same run id
// fails rather than silently rewriting history.
func (w *Writer) Write(rec *record.DecisionRecord) (string, error) {
	folder := filepath.Join(w.dir, strings.ToLower(string(rec.Decision)))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating outbox folder %s: %w", folder, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling decision record %s: %w", rec.RunID, err)
	}

	path := filepath.Join(folder, rec.RunID+".json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating outbox artifact %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("writing outbox artifact %s: %w", path, err)
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return "", fmt.Errorf("writing outbox artifact %s: %w", path, err)
	}

	return path, nil
}
