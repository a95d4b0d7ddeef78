package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration structure for Gatehouse Keystone.
// It contains all configuration sections for policy loading, the extraction
// sensor, audit persistence, intake, and telemetry.
type Config struct {
	// Policy contains configuration for locating and loading the policy
	// document evaluated against every submission.
	Policy PolicyConfig `yaml:"policy"`

	// Sensor contains configuration for the extraction sensor including
	// provider selection, transport settings, rate limiting, and caching.
	Sensor SensorConfig `yaml:"sensor"`

	// Audit contains configuration for decision artifacts: the outbox,
	// replay bundles, the query store, the async recorder, and retention.
	Audit AuditConfig `yaml:"audit"`

	// Intake contains configuration for submission intake, including the
	// inbox directory consumed in watch mode.
	Intake IntakeConfig `yaml:"intake"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig controls where the policy document is loaded from.
type PolicyConfig struct {
	// Dir is the root directory holding versioned policy documents laid out
	// as <dir>/<version>/policy.yaml.
	// Default: "policies"
	Dir string `yaml:"dir"`

	// Version selects the policy version under Dir.
	// Default: "v1"
	Version string `yaml:"version"`

	// File, when set, is an explicit policy file path and takes precedence
	// over Dir and Version.
	File string `yaml:"file"`
}

// Path returns the effective policy file path: File when set, otherwise the
// versioned layout under Dir.
func (p PolicyConfig) Path() string {
	if p.File != "" {
		return p.File
	}
	return filepath.Join(p.Dir, p.Version, "policy.yaml")
}

// SensorConfig controls the extraction sensor.
type SensorConfig struct {
	// Provider selects the sensor implementation.
	// Options: "static" (deterministic, offline), "openai" (live API)
	// Default: "static"
	Provider string `yaml:"provider"`

	// Model is the model identifier recorded on every extraction result and
	// sent to live providers.
	// Default: "mock"
	Model string `yaml:"model"`

	// BaseURL overrides the provider API endpoint. Useful for gateways and
	// compatible proxies. Empty uses the provider default.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the provider API key.
	// The key itself never appears in configuration files.
	// Default: "OPENAI_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout is the maximum duration of a single extraction call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit caps outbound extraction calls in requests per second.
	// Zero disables client-side rate limiting.
	// Default: 2
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the rate limiter burst size.
	// Default: 1
	Burst int `yaml:"burst"`

	// Cache controls extraction response caching.
	Cache SensorCacheConfig `yaml:"cache"`
}

// SensorCacheConfig controls the sensor response cache.
type SensorCacheConfig struct {
	// Enabled controls whether identical submissions reuse a cached
	// extraction instead of making a second provider call.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// TTL is how long cached extractions stay valid.
	// Default: 15m
	TTL time.Duration `yaml:"ttl"`
}

// AuditConfig controls decision artifact persistence.
type AuditConfig struct {
	// Enabled controls whether decision records are persisted. When false
	// the pipeline still decides but writes no artifacts.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// OutboxDir is the root of the decision outbox, laid out as
	// <outbox_dir>/<decision>/<run_id>.json.
	// Default: "outbox"
	OutboxDir string `yaml:"outbox_dir"`

	// RunsDir is the root directory for per-run replay bundles.
	// Default: "runs"
	RunsDir string `yaml:"runs_dir"`

	// Store configures the queryable audit store.
	Store StoreConfig `yaml:"store"`

	// Recorder configures the asynchronous recorder.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures pruning of old store entries.
	Retention RetentionConfig `yaml:"retention"`
}

// StoreConfig configures the audit store backend.
type StoreConfig struct {
	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database before
	// giving up.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig configures the asynchronous audit recorder.
type RecorderConfig struct {
	// AsyncBuffer is the channel buffer size for pending writes.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single artifact write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig configures audit store retention.
type RetentionConfig struct {
	// Days is the retention window. Store entries older than this are
	// pruned. Zero keeps entries forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of retained entries, oldest pruned first.
	// Zero means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is the cron expression for scheduled pruning in watch mode.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// IntakeConfig controls submission intake.
type IntakeConfig struct {
	// InboxDir is the directory watched for dropped submissions in watch
	// mode. Consumed files move to processed/ or failed/ beside it.
	// Default: "inbox"
	InboxDir string `yaml:"inbox_dir"`

	// DefaultSource is the metadata source recorded for submissions that do
	// not carry one.
	// Default: "inbox"
	DefaultSource string `yaml:"default_source"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII scrubs email addresses and phone numbers from log
	// attributes before they are written.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Listen is the address of the metrics and health HTTP listener started
	// in watch mode.
	// Default: "127.0.0.1:9090"
	Listen string `yaml:"listen"`

	// Path is the HTTP path serving Prometheus metrics.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
