package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/audit/recorder"
	"gatehouse-hq/keystone/pkg/audit/store"
	"gatehouse-hq/keystone/pkg/cli"
	"gatehouse-hq/keystone/pkg/config"
	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/extract/openai"
	"gatehouse-hq/keystone/pkg/extract/static"
	"gatehouse-hq/keystone/pkg/telemetry/logging"
	"gatehouse-hq/keystone/pkg/telemetry/metrics"
)

// loadConfig loads and validates the configuration file named by --config.
// A missing file falls back to pure defaults so the CLI works out of the box;
// a file that exists but does not parse is always an error. Commands apply
// their flag overrides to the returned config before installing the logger.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	return cfg, nil
}

// installLogger builds the process logger from the config and makes it the
// slog default, so component loggers created deeper in the stack inherit the
// level, format, and redaction settings.
func installLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		RedactPII: cfg.Telemetry.Logging.RedactPII,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openAuditStore opens the configured audit store backend.
func openAuditStore(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Store.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Audit.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		storeConfig := store.DefaultSQLiteConfig()
		storeConfig.Path = cfg.Audit.Store.Path
		storeConfig.BusyTimeout = cfg.Audit.Store.BusyTimeout
		storage, err := store.NewSQLiteStorage(storeConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		return storage, nil
	case "memory":
		return store.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit store backend: %s (supported: sqlite, memory)", cfg.Audit.Store.Backend)
	}
}

// newAuditRecorder wires the async recorder over an open store using the
// configured buffer, timeout, and artifact directories.
func newAuditRecorder(storage audit.Storage, cfg *config.Config) *recorder.Recorder {
	return recorder.NewRecorder(storage, &recorder.Config{
		Enabled:      true,
		AsyncBuffer:  cfg.Audit.Recorder.AsyncBuffer,
		WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
		OutboxDir:    cfg.Audit.OutboxDir,
		RunsDir:      cfg.Audit.RunsDir,
	})
}

// buildSensor constructs the configured extraction sensor. The static sensor
// needs no credentials and never leaves the process; the openai sensor reads
// its API key from the environment variable named in the config, so the key
// never appears in a file.
func buildSensor(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (extract.Sensor, error) {
	switch cfg.Sensor.Provider {
	case "", "static":
		return static.NewStubSensor(), nil
	case "openai":
		apiKey := os.Getenv(cfg.Sensor.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("sensor provider %q needs an API key in $%s", cfg.Sensor.Provider, cfg.Sensor.APIKeyEnv)
		}
		sensorConfig := openai.Config{
			APIKey:    apiKey,
			BaseURL:   cfg.Sensor.BaseURL,
			Timeout:   cfg.Sensor.Timeout,
			RateLimit: cfg.Sensor.RateLimit,
			Burst:     cfg.Sensor.Burst,
			Metrics:   collector,
			Logger:    logger,
		}
		if cfg.Sensor.Cache.Enabled {
			sensorConfig.CacheTTL = cfg.Sensor.Cache.TTL
		}
		return openai.NewSensor(sensorConfig)
	default:
		return nil, fmt.Errorf("unsupported sensor provider: %s (supported: static, openai)", cfg.Sensor.Provider)
	}
}

// sensorLabel names the active sensor for banners and startup output.
func sensorLabel(cfg *config.Config) string {
	if cfg.Sensor.Provider == "openai" {
		return "openai/" + cfg.Sensor.Model
	}
	return "static"
}

// shortHash truncates a hex digest for display. Full hashes live in the
// record; twelve characters is plenty to eyeball.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
