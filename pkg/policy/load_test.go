package policy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writePolicy(t, sampleDocument)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load policy: %v", err)
	}

	if doc.Path != path {
		t.Errorf("expected path %q, got %q", path, doc.Path)
	}
	if doc.RuleCount() != 2 {
		t.Errorf("expected 2 rules, got %d", doc.RuleCount())
	}
	if len(doc.Source) == 0 {
		t.Error("expected source bytes to be retained")
	}
	if len(doc.Hash) != 64 {
		t.Errorf("expected 64-char sha256 hex, got %q", doc.Hash)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/policy.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *policy.Error, got %T", err)
	}
	if perr.Type != ErrorTypeIO {
		t.Errorf("expected io error, got %q", perr.Type)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writePolicy(t, "rules: [\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *policy.Error, got %T", err)
	}
	if perr.Type != ErrorTypeSyntax {
		t.Errorf("expected syntax error, got %q", perr.Type)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	// Duplicate rule ids plus an unknown decision.
	path := writePolicy(t, `
version: v1
rules:
  - id: R-DUP
    when:
      any:
        - condition: empty_input
    then:
      decision: REJECTED
  - id: R-DUP
    when:
      all: []
    then:
      decision: MAYBE
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected *policy.ErrorList, got %T", err)
	}
	if list.Count() != 2 {
		t.Errorf("expected 2 errors, got %d: %v", list.Count(), list)
	}
	if !strings.Contains(err.Error(), "duplicate rule id") {
		t.Errorf("expected duplicate id in message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "unknown decision") {
		t.Errorf("expected unknown decision in message, got: %v", err)
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	path := writePolicy(t, "")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty policy")
	}
	if !strings.Contains(err.Error(), "no rules") {
		t.Errorf("expected no-rules error, got: %v", err)
	}
}

func TestParse_HashMatchesSource(t *testing.T) {
	data := []byte(sampleDocument)

	first, err := Parse(data, "policy.yaml")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	second, err := Parse(data, "elsewhere.yaml")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if first.Hash != second.Hash {
		t.Errorf("same bytes produced different hashes: %q vs %q", first.Hash, second.Hash)
	}

	third, err := Parse(append(data, '\n'), "policy.yaml")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if third.Hash == first.Hash {
		t.Error("different bytes produced the same hash")
	}
}

func TestParse_WrongShape(t *testing.T) {
	_, err := Parse([]byte(`rules: "not a list"`), "policy.yaml")
	if err == nil {
		t.Fatal("expected error for wrong structure")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *policy.Error, got %T", err)
	}
	if perr.Type != ErrorTypeSyntax {
		t.Errorf("expected syntax error, got %q", perr.Type)
	}
}

func TestVersionPath(t *testing.T) {
	got := VersionPath("policies", "v1")
	want := filepath.Join("policies", "v1", "policy.yaml")
	if got != want {
		t.Errorf("VersionPath() = %q, want %q", got, want)
	}
}
