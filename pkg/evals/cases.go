package evals

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gatehouse-hq/keystone/pkg/extract"
)

// Case is one evaluation case. RawText is the submission under test;
// Extraction, when present, is replayed as the sensor's claims so the case
// does not depend on a live model. ExpectedDecision and MustNotBe are the
// suite author's expectations; both are optional.
type Case struct {
	ID               string          `json:"id"`
	RawText          string          `json:"raw_text"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	Extraction       *extract.Claims `json:"extraction,omitempty"`
	ExpectedDecision string          `json:"expected_decision,omitempty"`
	MustNotBe        string          `json:"must_not_be,omitempty"`
}

// maxLineBytes bounds one JSONL line. Submissions are short; a case larger
// than this is a corrupted suite, not data.
const maxLineBytes = 1 * 1024 * 1024

// LoadSuite reads a JSONL case suite. Blank lines are skipped; anything else
// must be a complete JSON object per line. Errors carry the line number.
func LoadSuite(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suite: %w", err)
	}
	defer f.Close()

	var cases []Case
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var c Case
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("suite %s line %d: %w", path, line, err)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("suite %s line %d: case has no id", path, line)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	return cases, nil
}
