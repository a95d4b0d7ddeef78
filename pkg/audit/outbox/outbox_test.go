package outbox

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/record"
)

func sampleRecord(runID string, decision policy.Decision) *record.DecisionRecord {
	received := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &record.DecisionRecord{
		RunID:         runID,
		Decision:      decision,
		PolicyVersion: "v1",
		Model:         "mock",
		ReceivedAt:    received,
		DecidedAt:     received.Add(42 * time.Millisecond),
		DurationMS:    42,
		Input: intake.Envelope{
			RawText:  "Forklift clipped a rack in the warehouse.",
			Metadata: intake.Metadata{Source: "test", ReceivedAt: received},
		},
		Extraction: *extract.AbsentResult("mock", ""),
		Normalized: normalize.Bundle{
			Record: normalize.Record{},
			Report: normalize.Report{
				MissingRequired: []string{"event_time"},
				Flags:           []normalize.Flag{},
			},
		},
		Policy: policy.Outcome{
			Decision:            decision,
			ReasonCodes:         []policy.ReasonCode{},
			RuleIDsFired:        []string{"R-TEST"},
			RequiredNextActions: []string{},
			ConfidenceBound:     0.75,
		},
		Build: record.BuildInfo{
			System:        record.SystemName,
			Version:       "test",
			PolicyVersion: "v1",
			PolicyHash:    "cafe0123",
		},
	}
}

func TestWrite_FilesUnderDecision(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	rec := sampleRecord("gh_20250314T092653Z_0a1b2c3d", policy.DecisionRejected)
	path, err := w.Write(rec)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := filepath.Join(dir, "rejected", "gh_20250314T092653Z_0a1b2c3d.json")
	if path != want {
		t.Errorf("Write() path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}
}

func TestWrite_ArtifactRoundTrip(t *testing.T) {
	w := NewWriter(t.TempDir())

	rec := sampleRecord("gh_20250314T092653Z_11223344", policy.DecisionEscalated)
	path, err := w.Write(rec)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n  ") {
		t.Error("artifact should be indented JSON")
	}

	var got record.DecisionRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshaling artifact: %v", err)
	}
	if got.RunID != rec.RunID {
		t.Errorf("run_id = %q, want %q", got.RunID, rec.RunID)
	}
	if got.Decision != rec.Decision {
		t.Errorf("decision = %q, want %q", got.Decision, rec.Decision)
	}
	if got.Input.RawText != rec.Input.RawText {
		t.Errorf("input.raw_text = %q, want %q", got.Input.RawText, rec.Input.RawText)
	}
	if got.Build.PolicyHash != rec.Build.PolicyHash {
		t.Errorf("build.policy_hash = %q, want %q", got.Build.PolicyHash, rec.Build.PolicyHash)
	}
}

func TestWrite_DecisionFoldersAreLowercase(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	cases := []struct {
		decision policy.Decision
		folder   string
	}{
		{policy.DecisionAccepted, "accepted"},
		{policy.DecisionRejected, "rejected"},
		{policy.DecisionEscalated, "escalated"},
	}

	for i, tc := range cases {
		runID := record.NewRunID()
		rec := sampleRecord(runID, tc.decision)
		path, err := w.Write(rec)
		if err != nil {
			t.Fatalf("case %d: Write() error = %v", i, err)
		}
		if got := filepath.Base(filepath.Dir(path)); got != tc.folder {
			t.Errorf("case %d: folder = %q, want %q", i, got, tc.folder)
		}
	}
}

func TestWrite_SecondWriteFails(t *testing.T) {
	w := NewWriter(t.TempDir())

	rec := sampleRecord("gh_20250314T092653Z_deadbeef", policy.DecisionAccepted)
	if _, err := w.Write(rec); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if _, err := w.Write(rec); err == nil {
		t.Error("second Write() for the same run id should fail")
	}
}

func TestNewWriter_DefaultDir(t *testing.T) {
	w := NewWriter("")
	if w.dir != DefaultDir {
		t.Errorf("dir = %q, want %q", w.dir, DefaultDir)
	}
}
