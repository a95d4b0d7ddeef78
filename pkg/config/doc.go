// Package config provides configuration management for Gatehouse Keystone.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// When no configuration file exists at all, DefaultedConfig builds a working
// configuration from defaults plus environment overrides.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GATEHOUSE_SECTION_FIELD.
// For example:
//
//   - GATEHOUSE_POLICY_VERSION overrides policy.version
//   - GATEHOUSE_SENSOR_MODEL overrides sensor.model
//   - GATEHOUSE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Policy.Path())
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	policy:
//	  dir: "policies"
//	  version: "v1"
//
//	sensor:
//	  provider: "static"
//	  model: "mock"
//
//	audit:
//	  enabled: true
//	  store:
//	    backend: "sqlite"
//	    path: "data/audit.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
