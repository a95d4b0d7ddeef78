package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
policy:
  dir: "conf/policies"
  version: "v2"

sensor:
  provider: "openai"
  model: "gpt-4o-mini"
  timeout: "45s"
  rate_limit: 1.5
  burst: 2

audit:
  enabled: true
  store:
    backend: "sqlite"
    path: "./test-audit.db"

telemetry:
  logging:
    level: "debug"
    format: "text"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Policy.Dir != "conf/policies" {
		t.Errorf("expected policy dir %q, got %q", "conf/policies", cfg.Policy.Dir)
	}
	if cfg.Policy.Version != "v2" {
		t.Errorf("expected policy version %q, got %q", "v2", cfg.Policy.Version)
	}
	if cfg.Sensor.Model != "gpt-4o-mini" {
		t.Errorf("expected model %q, got %q", "gpt-4o-mini", cfg.Sensor.Model)
	}
	if cfg.Sensor.Timeout != 45*time.Second {
		t.Errorf("expected sensor timeout %v, got %v", 45*time.Second, cfg.Sensor.Timeout)
	}
	if cfg.Audit.Store.Path != "./test-audit.db" {
		t.Errorf("expected store path %q, got %q", "./test-audit.db", cfg.Audit.Store.Path)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}

	// Unset sections still get defaults.
	if cfg.Intake.InboxDir != DefaultIntakeInboxDir {
		t.Errorf("expected default inbox dir %q, got %q", DefaultIntakeInboxDir, cfg.Intake.InboxDir)
	}
	if cfg.Audit.Recorder.AsyncBuffer != DefaultRecorderAsyncBuffer {
		t.Errorf("expected default async buffer %d, got %d", DefaultRecorderAsyncBuffer, cfg.Audit.Recorder.AsyncBuffer)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	malformedContent := `
policy:
  dir: "policies"
  invalid yaml here: [
`

	if err := os.WriteFile(configPath, []byte(malformedContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidContent := `
sensor:
  provider: "carrier-pigeon"

telemetry:
  logging:
    level: "invalid"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError in error chain, got %T: %v", err, err)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
policy:
  version: "v1"

sensor:
  model: "mock"

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("GATEHOUSE_POLICY_VERSION", "v3")
	os.Setenv("GATEHOUSE_SENSOR_MODEL", "gpt-4o")
	os.Setenv("GATEHOUSE_TELEMETRY_LOGGING_LEVEL", "debug")
	defer func() {
		os.Unsetenv("GATEHOUSE_POLICY_VERSION")
		os.Unsetenv("GATEHOUSE_SENSOR_MODEL")
		os.Unsetenv("GATEHOUSE_TELEMETRY_LOGGING_LEVEL")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Policy.Version != "v3" {
		t.Errorf("expected policy version %q from env, got %q", "v3", cfg.Policy.Version)
	}
	if cfg.Sensor.Model != "gpt-4o" {
		t.Errorf("expected model %q from env, got %q", "gpt-4o", cfg.Sensor.Model)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q from env, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_TypedParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
sensor:
  timeout: "30s"
  rate_limit: 2

audit:
  enabled: true
  retention:
    days: 90
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("GATEHOUSE_SENSOR_TIMEOUT", "90s")
	os.Setenv("GATEHOUSE_SENSOR_RATE_LIMIT", "0.5")
	os.Setenv("GATEHOUSE_AUDIT_RETENTION_DAYS", "30")
	os.Setenv("GATEHOUSE_AUDIT_RETENTION_MAX_RECORDS", "5000")
	os.Setenv("GATEHOUSE_AUDIT_ENABLED", "false")
	defer func() {
		os.Unsetenv("GATEHOUSE_SENSOR_TIMEOUT")
		os.Unsetenv("GATEHOUSE_SENSOR_RATE_LIMIT")
		os.Unsetenv("GATEHOUSE_AUDIT_RETENTION_DAYS")
		os.Unsetenv("GATEHOUSE_AUDIT_RETENTION_MAX_RECORDS")
		os.Unsetenv("GATEHOUSE_AUDIT_ENABLED")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Sensor.Timeout != 90*time.Second {
		t.Errorf("expected sensor timeout %v, got %v", 90*time.Second, cfg.Sensor.Timeout)
	}
	if cfg.Sensor.RateLimit != 0.5 {
		t.Errorf("expected rate limit %v, got %v", 0.5, cfg.Sensor.RateLimit)
	}
	if cfg.Audit.Retention.Days != 30 {
		t.Errorf("expected retention days %d, got %d", 30, cfg.Audit.Retention.Days)
	}
	if cfg.Audit.Retention.MaxRecords != 5000 {
		t.Errorf("expected max records %d, got %d", 5000, cfg.Audit.Retention.MaxRecords)
	}
	if cfg.Audit.Enabled {
		t.Error("expected audit disabled from env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Unparseable numerics are ignored; the bad level fails validation.
	os.Setenv("GATEHOUSE_AUDIT_RETENTION_DAYS", "not-a-number")
	os.Setenv("GATEHOUSE_TELEMETRY_LOGGING_LEVEL", "invalid-level")
	defer func() {
		os.Unsetenv("GATEHOUSE_AUDIT_RETENTION_DAYS")
		os.Unsetenv("GATEHOUSE_TELEMETRY_LOGGING_LEVEL")
	}()

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Error("expected validation error for invalid env values")
	}
}

func TestDefaultedConfig(t *testing.T) {
	cfg, err := DefaultedConfig()
	if err != nil {
		t.Fatalf("failed to build defaulted config: %v", err)
	}

	if cfg.Policy.Path() != filepath.Join("policies", "v1", "policy.yaml") {
		t.Errorf("unexpected default policy path %q", cfg.Policy.Path())
	}
	if cfg.Sensor.Provider != "static" {
		t.Errorf("expected default provider %q, got %q", "static", cfg.Sensor.Provider)
	}
	if cfg.Sensor.Model != "mock" {
		t.Errorf("expected default model %q, got %q", "mock", cfg.Sensor.Model)
	}
	if !cfg.Audit.Enabled {
		t.Error("expected audit enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
}

func TestDefaultedConfig_EnvOverrides(t *testing.T) {
	os.Setenv("GATEHOUSE_POLICY_DIR", "/etc/gatehouse/policies")
	defer os.Unsetenv("GATEHOUSE_POLICY_DIR")

	cfg, err := DefaultedConfig()
	if err != nil {
		t.Fatalf("failed to build defaulted config: %v", err)
	}

	if cfg.Policy.Dir != "/etc/gatehouse/policies" {
		t.Errorf("expected policy dir from env, got %q", cfg.Policy.Dir)
	}
}
