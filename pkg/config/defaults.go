package config

import "time"

// Default values for configuration fields.
const (
	// Policy defaults
	DefaultPolicyDir     = "policies"
	DefaultPolicyVersion = "v1"

	// Sensor defaults
	DefaultSensorProvider  = "static"
	DefaultSensorModel     = "mock"
	DefaultSensorAPIKeyEnv = "OPENAI_API_KEY"
	DefaultSensorTimeout   = 30 * time.Second
	DefaultSensorRateLimit = 2.0
	DefaultSensorBurst     = 1
	DefaultSensorCacheTTL  = 15 * time.Minute

	// Audit defaults
	DefaultAuditOutboxDir       = "outbox"
	DefaultAuditRunsDir         = "runs"
	DefaultStoreBackend         = "sqlite"
	DefaultStorePath            = "data/audit.db"
	DefaultStoreBusyTimeout     = 5 * time.Second
	DefaultRecorderAsyncBuffer  = 1000
	DefaultRecorderWriteTimeout = 5 * time.Second
	DefaultRetentionDays        = 90
	DefaultRetentionMaxRecords  = int64(0)
	DefaultRetentionSchedule    = "0 3 * * *"

	// Intake defaults
	DefaultIntakeInboxDir = "inbox"
	DefaultIntakeSource   = "inbox"

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsListen = "127.0.0.1:9090"
	DefaultMetricsPath   = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Policy defaults
	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = DefaultPolicyDir
	}
	if cfg.Policy.Version == "" {
		cfg.Policy.Version = DefaultPolicyVersion
	}

	// Sensor defaults
	if cfg.Sensor.Provider == "" {
		cfg.Sensor.Provider = DefaultSensorProvider
	}
	if cfg.Sensor.Model == "" {
		cfg.Sensor.Model = DefaultSensorModel
	}
	if cfg.Sensor.APIKeyEnv == "" {
		cfg.Sensor.APIKeyEnv = DefaultSensorAPIKeyEnv
	}
	if cfg.Sensor.Timeout == 0 {
		cfg.Sensor.Timeout = DefaultSensorTimeout
	}
	if cfg.Sensor.RateLimit == 0 {
		cfg.Sensor.RateLimit = DefaultSensorRateLimit
	}
	if cfg.Sensor.Burst == 0 {
		cfg.Sensor.Burst = DefaultSensorBurst
	}
	applySensorCacheDefaults(&cfg.Sensor.Cache)

	// Audit defaults
	applyAuditDefaults(&cfg.Audit)

	// Intake defaults
	if cfg.Intake.InboxDir == "" {
		cfg.Intake.InboxDir = DefaultIntakeInboxDir
	}
	if cfg.Intake.DefaultSource == "" {
		cfg.Intake.DefaultSource = DefaultIntakeSource
	}

	// Telemetry defaults
	applyLoggingDefaults(&cfg.Telemetry.Logging)
	applyMetricsDefaults(&cfg.Telemetry.Metrics)
}

// applyLoggingDefaults applies default values to the logging configuration.
// RedactPII defaults to true only when the whole section is unset.
func applyLoggingDefaults(logging *LoggingConfig) {
	if !logging.RedactPII && logging.Level == "" && logging.Format == "" && !logging.AddSource {
		logging.RedactPII = true
	}
	if logging.Level == "" {
		logging.Level = DefaultLoggingLevel
	}
	if logging.Format == "" {
		logging.Format = DefaultLoggingFormat
	}
}

// applySensorCacheDefaults applies default values to the sensor cache
// configuration. Enabled defaults to true only when the whole cache section
// is unset, so an explicit enabled: false with a custom TTL is respected.
func applySensorCacheDefaults(cache *SensorCacheConfig) {
	if !cache.Enabled && cache.TTL == 0 {
		cache.Enabled = true
	}
	if cache.TTL == 0 {
		cache.TTL = DefaultSensorCacheTTL
	}
}

// applyAuditDefaults applies default values to the audit configuration.
// Enabled defaults to true only when the whole section is unset; a section
// with any field configured keeps its explicit Enabled value.
func applyAuditDefaults(audit *AuditConfig) {
	if !audit.Enabled {
		hasAnyConfig := audit.OutboxDir != "" ||
			audit.RunsDir != "" ||
			audit.Store.Backend != "" ||
			audit.Store.Path != "" ||
			audit.Store.BusyTimeout != 0 ||
			audit.Recorder.AsyncBuffer != 0 ||
			audit.Recorder.WriteTimeout != 0 ||
			audit.Retention.Days != 0 ||
			audit.Retention.MaxRecords != 0 ||
			audit.Retention.Schedule != ""

		if !hasAnyConfig {
			audit.Enabled = true
		}
	}

	if audit.OutboxDir == "" {
		audit.OutboxDir = DefaultAuditOutboxDir
	}
	if audit.RunsDir == "" {
		audit.RunsDir = DefaultAuditRunsDir
	}

	// Store defaults
	if audit.Store.Backend == "" {
		audit.Store.Backend = DefaultStoreBackend
	}
	if audit.Store.Path == "" {
		audit.Store.Path = DefaultStorePath
	}
	if audit.Store.BusyTimeout == 0 {
		audit.Store.BusyTimeout = DefaultStoreBusyTimeout
	}

	// Recorder defaults
	if audit.Recorder.AsyncBuffer == 0 {
		audit.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if audit.Recorder.WriteTimeout == 0 {
		audit.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}

	// Retention defaults
	if audit.Retention.Days == 0 {
		audit.Retention.Days = DefaultRetentionDays
	}
	if audit.Retention.Schedule == "" {
		audit.Retention.Schedule = DefaultRetentionSchedule
	}
}

// applyMetricsDefaults applies default values to the metrics configuration.
// Enabled defaults to true only when the whole section is unset.
func applyMetricsDefaults(metrics *MetricsConfig) {
	if !metrics.Enabled && metrics.Listen == "" && metrics.Path == "" {
		metrics.Enabled = true
	}
	if metrics.Listen == "" {
		metrics.Listen = DefaultMetricsListen
	}
	if metrics.Path == "" {
		metrics.Path = DefaultMetricsPath
	}
}
