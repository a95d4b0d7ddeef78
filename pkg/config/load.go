package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that behavior.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GATEHOUSE_SECTION_FIELD (e.g. GATEHOUSE_POLICY_VERSION) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// DefaultedConfig returns a configuration built purely from defaults, with
// environment overrides applied. Used when no configuration file exists.
func DefaultedConfig() (*Config, error) {
	var cfg Config
	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format GATEHOUSE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	if val := os.Getenv("GATEHOUSE_POLICY_DIR"); val != "" {
		cfg.Policy.Dir = val
	}
	if val := os.Getenv("GATEHOUSE_POLICY_VERSION"); val != "" {
		cfg.Policy.Version = val
	}
	if val := os.Getenv("GATEHOUSE_POLICY_FILE"); val != "" {
		cfg.Policy.File = val
	}

	// Sensor overrides
	if val := os.Getenv("GATEHOUSE_SENSOR_PROVIDER"); val != "" {
		cfg.Sensor.Provider = val
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_MODEL"); val != "" {
		cfg.Sensor.Model = val
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_BASE_URL"); val != "" {
		cfg.Sensor.BaseURL = val
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_API_KEY_ENV"); val != "" {
		cfg.Sensor.APIKeyEnv = val
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sensor.Timeout = d
		}
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Sensor.RateLimit = f
		}
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_BURST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Sensor.Burst = i
		}
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sensor.Cache.Enabled = b
		}
	}
	if val := os.Getenv("GATEHOUSE_SENSOR_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sensor.Cache.TTL = d
		}
	}

	// Audit overrides
	if val := os.Getenv("GATEHOUSE_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_OUTBOX_DIR"); val != "" {
		cfg.Audit.OutboxDir = val
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RUNS_DIR"); val != "" {
		cfg.Audit.RunsDir = val
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_STORE_BACKEND"); val != "" {
		cfg.Audit.Store.Backend = val
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_STORE_PATH"); val != "" {
		cfg.Audit.Store.Path = val
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_STORE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Store.BusyTimeout = d
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RECORDER_ASYNC_BUFFER"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Recorder.AsyncBuffer = i
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RECORDER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Recorder.WriteTimeout = d
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("GATEHOUSE_AUDIT_RETENTION_SCHEDULE"); val != "" {
		cfg.Audit.Retention.Schedule = val
	}

	// Intake overrides
	if val := os.Getenv("GATEHOUSE_INTAKE_INBOX_DIR"); val != "" {
		cfg.Intake.InboxDir = val
	}
	if val := os.Getenv("GATEHOUSE_INTAKE_DEFAULT_SOURCE"); val != "" {
		cfg.Intake.DefaultSource = val
	}

	// Telemetry overrides
	if val := os.Getenv("GATEHOUSE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.AddSource = b
		}
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_LOGGING_REDACT_PII"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.RedactPII = b
		}
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_METRICS_LISTEN"); val != "" {
		cfg.Telemetry.Metrics.Listen = val
	}
	if val := os.Getenv("GATEHOUSE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
