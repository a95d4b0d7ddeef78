package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxSubmissionBytes caps how large a submission file may be. Incident
// reports are short prose; anything bigger is a misdirected file, not data.
const maxSubmissionBytes = 1 * 1024 * 1024

// submissionFile is the JSON submission format: raw text plus optional
// intake metadata.
type submissionFile struct {
	RawText  string         `json:"raw_text"`
	Metadata map[string]any `json:"metadata"`
}

// ReadSubmissionFile loads one submission from disk. Files ending in .json
// must hold the {"raw_text": ..., "metadata": {...}} form; any other
// extension is read as plain submission text. The file's base name is kept
// in the envelope's extra metadata unless the submitter already set one.
func ReadSubmissionFile(path, defaultSource string) (*Envelope, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("submission file: %w", err)
	}
	if info.Size() > maxSubmissionBytes {
		return nil, fmt.Errorf("submission file %s exceeds %d bytes", path, maxSubmissionBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("submission file: %w", err)
	}

	var md Metadata
	rawText := string(data)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var sub submissionFile
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, fmt.Errorf("submission file %s: %w", path, err)
		}
		rawText = sub.RawText
		md = MetadataFromMap(sub.Metadata)
	}

	if md.Source == "" {
		md.Source = defaultSource
	}
	if md.Extra == nil {
		md.Extra = make(map[string]any)
	}
	if _, ok := md.Extra["filename"]; !ok {
		md.Extra["filename"] = filepath.Base(path)
	}

	return NewEnvelope(rawText, md), nil
}
