package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetAndGetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := validConfig()
	cfg.Policy.Version = "v9"
	SetConfig(&cfg)

	got := GetConfig()
	if got == nil {
		t.Fatal("expected config after SetConfig")
	}
	if got.Policy.Version != "v9" {
		t.Errorf("expected version %q, got %q", "v9", got.Policy.Version)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := loadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Sensor.Provider != DefaultSensorProvider {
		t.Errorf("expected default provider %q, got %q", DefaultSensorProvider, cfg.Sensor.Provider)
	}
}

func TestLoadOrDefault_ExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
policy:
  version: "v4"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := loadOrDefault(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Policy.Version != "v4" {
		t.Errorf("expected version %q, got %q", "v4", cfg.Policy.Version)
	}
}

func TestLoadOrDefault_BrokenFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("policy: ["), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := loadOrDefault(path); err == nil {
		t.Error("expected error for a file that exists but cannot be parsed")
	}
}
