package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// maxDocumentSize caps how much policy text Load will read.
const maxDocumentSize = 10 * 1024 * 1024

// DefaultFileName is the policy file name inside a version directory.
const DefaultFileName = "policy.yaml"

// VersionPath resolves the conventional policies/<version>/policy.yaml
// layout.
func VersionPath(dir, version string) string {
	return filepath.Join(dir, version, DefaultFileName)
}

// Load reads, parses and validates a policy document. Any failure here is a
// configuration error: there is no safe default for an unknown policy, so
// the caller must abort before producing a Decision Record.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Type: ErrorTypeIO, Message: fmt.Sprintf("policy file not found: %s", path)}
	}
	if info.Size() > maxDocumentSize {
		return nil, &Error{Type: ErrorTypeIO, Message: fmt.Sprintf("policy file %s exceeds %d bytes", path, maxDocumentSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Type: ErrorTypeIO, Message: fmt.Sprintf("reading policy file %s: %v", path, err)}
	}

	doc, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc).ToError(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes policy YAML and snapshots its source bytes and hash, without
// validating the result. Lint-style callers use Parse directly so a single
// pass can report every problem in the document.
func Parse(data []byte, path string) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &Error{Type: ErrorTypeSyntax, Message: fmt.Sprintf("invalid policy YAML: %v", err)}
	}

	doc := &Document{}
	if node.Kind != 0 {
		if err := node.Decode(doc); err != nil {
			return nil, &Error{Type: ErrorTypeSyntax, Message: fmt.Sprintf("policy structure does not decode: %v", err)}
		}
	}

	doc.Path = path
	doc.Source = data
	doc.Hash = hashBytes(data)
	return doc, nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
