package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g. "policy.dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateSensor(&cfg.Sensor)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateIntake(&cfg.Intake)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validatePolicy validates policy configuration.
func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	// An explicit file stands on its own; the versioned layout needs both.
	if cfg.File == "" {
		if cfg.Dir == "" {
			errs = append(errs, FieldError{
				Field:   "policy.dir",
				Message: "policy directory is required when no explicit file is set",
			})
		}
		if cfg.Version == "" {
			errs = append(errs, FieldError{
				Field:   "policy.version",
				Message: "policy version is required when no explicit file is set",
			})
		}
	}

	return errs
}

// validateSensor validates sensor configuration.
func validateSensor(cfg *SensorConfig) []FieldError {
	var errs []FieldError

	validProviders := map[string]bool{"static": true, "openai": true}
	if cfg.Provider == "" {
		errs = append(errs, FieldError{
			Field:   "sensor.provider",
			Message: "sensor provider is required",
		})
	} else if !validProviders[cfg.Provider] {
		errs = append(errs, FieldError{
			Field:   "sensor.provider",
			Message: fmt.Sprintf("invalid provider %q: must be 'static' or 'openai'", cfg.Provider),
		})
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "sensor.model",
			Message: "sensor model is required",
		})
	}

	if cfg.BaseURL != "" {
		if _, err := url.Parse(cfg.BaseURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "sensor.base_url",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		}
	}

	// The API key itself is resolved from the environment at runtime; only
	// the variable name is validated here.
	if cfg.Provider == "openai" && cfg.APIKeyEnv == "" {
		errs = append(errs, FieldError{
			Field:   "sensor.api_key_env",
			Message: "API key environment variable name is required for the openai provider",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "sensor.timeout",
			Message: "timeout must be non-negative",
		})
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "sensor.rate_limit",
			Message: "rate limit must be non-negative",
		})
	}
	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		errs = append(errs, FieldError{
			Field:   "sensor.burst",
			Message: "burst must be at least 1 when rate limiting is enabled",
		})
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "sensor.cache.ttl",
			Message: "cache TTL must be positive when the cache is enabled",
		})
	}

	return errs
}

// validateAudit validates audit configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If audit is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.OutboxDir == "" {
		errs = append(errs, FieldError{
			Field:   "audit.outbox_dir",
			Message: "outbox directory is required when audit is enabled",
		})
	}
	if cfg.RunsDir == "" {
		errs = append(errs, FieldError{
			Field:   "audit.runs_dir",
			Message: "runs directory is required when audit is enabled",
		})
	}

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Store.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "audit.store.backend",
			Message: "store backend is required when audit is enabled",
		})
	} else if !validBackends[cfg.Store.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.store.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Store.Backend),
		})
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.store.path",
			Message: "SQLite path is required when backend is 'sqlite'",
		})
	}
	if cfg.Store.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.store.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	if cfg.Recorder.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer must be at least 1",
		})
	}
	if cfg.Recorder.WriteTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}

	return errs
}

// validateIntake validates intake configuration.
func validateIntake(cfg *IntakeConfig) []FieldError {
	var errs []FieldError

	if cfg.InboxDir == "" {
		errs = append(errs, FieldError{
			Field:   "intake.inbox_dir",
			Message: "inbox directory is required",
		})
	}
	if cfg.DefaultSource == "" {
		errs = append(errs, FieldError{
			Field:   "intake.default_source",
			Message: "default source is required",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen",
				Message: "metrics listen address is required when metrics are enabled",
			})
		}
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/'",
			})
		}
	}

	return errs
}
