package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/audit/retention"
	"gatehouse-hq/keystone/pkg/cli"
	"gatehouse-hq/keystone/pkg/config"
	"gatehouse-hq/keystone/pkg/intake/watcher"
	"gatehouse-hq/keystone/pkg/pipeline"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/telemetry/health"
	"gatehouse-hq/keystone/pkg/telemetry/metrics"
)

var watchFlags struct {
	inbox    string
	listen   string
	logLevel string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an inbox directory for submissions",
	Long: `Run Gatehouse Keystone as a service over an inbox directory.

Files dropped into the inbox are picked up after a quiet period, decided
through the full pipeline, and moved to processed/ (named by run id) or
failed/ beside the inbox. Files already present at startup are swept
first. A small HTTP listener serves Prometheus metrics plus liveness
(/healthz) and readiness (/readyz) probes while the watcher runs.

Examples:
  # Watch the configured inbox
  gatehouse watch

  # Watch a different directory
  gatehouse watch --inbox /var/spool/gatehouse

  # Expose metrics on all interfaces
  gatehouse watch --listen 0.0.0.0:9090`,
	RunE: watchInbox,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.inbox, "inbox", "", "override inbox directory")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "override metrics listen address")
	watchCmd.Flags().StringVar(&watchFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func watchInbox(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if watchFlags.inbox != "" {
		cfg.Intake.InboxDir = watchFlags.inbox
	}
	if watchFlags.listen != "" {
		cfg.Telemetry.Metrics.Listen = watchFlags.listen
	}
	if watchFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = watchFlags.logLevel
	}

	logger, err := installLogger(cfg)
	if err != nil {
		return err
	}

	printWatchBanner(cfg)

	doc, err := policy.Load(cfg.Policy.Path())
	if err != nil {
		return cli.NewCommandError("watch", fmt.Errorf("failed to load policy: %w", err))
	}
	fmt.Printf("✓ Policy %s loaded (%d rules)\n", doc.Version, len(doc.Rules))

	collector := metrics.NewCollector(&metrics.Config{Enabled: cfg.Telemetry.Metrics.Enabled}, nil)

	sensor, err := buildSensor(cfg, collector, logger)
	if err != nil {
		return cli.NewConfigError("sensor", err.Error())
	}
	fmt.Printf("✓ Sensor ready (%s)\n", sensorLabel(cfg))

	opts := pipeline.Options{
		Sensor:   sensor,
		Document: doc,
		Metrics:  collector,
		Logger:   logger,
		Model:    cfg.Sensor.Model,
		Version:  Version,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var storage audit.Storage
	if cfg.Audit.Enabled {
		storage, err = openAuditStore(cfg)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer storage.Close()

		auditRecorder := newAuditRecorder(storage, cfg)
		defer auditRecorder.Close()
		opts.Recorder = auditRecorder
		fmt.Println("✓ Audit store initialized")

		// Scheduled pruning keeps the store inside the retention window.
		if cfg.Audit.Retention.Schedule != "" {
			pruner := retention.NewPruner(storage, &retention.Config{
				RetentionDays: cfg.Audit.Retention.Days,
				MaxRecords:    cfg.Audit.Retention.MaxRecords,
				Schedule:      cfg.Audit.Retention.Schedule,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("retention scheduler started", "next_pruning", next)
				}
			}
		}
	}

	g, err := pipeline.NewGatekeeper(opts)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	watcherConfig := watcher.DefaultConfig()
	watcherConfig.InboxDir = cfg.Intake.InboxDir
	watcherConfig.Source = cfg.Intake.DefaultSource
	w, err := watcher.NewWatcher(watcherConfig, g, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := w.Run(ctx); err != nil {
			errChan <- fmt.Errorf("watcher error: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		checker := health.New(2 * time.Second)
		checker.RegisterCheck("inbox", func(_ context.Context) error {
			info, err := os.Stat(cfg.Intake.InboxDir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", cfg.Intake.InboxDir)
			}
			return nil
		})
		if storage != nil {
			checker.RegisterCheck("audit_store", func(ctx context.Context) error {
				_, err := storage.Count(ctx, &audit.Query{Limit: 1})
				return err
			})
		}

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		mux.HandleFunc("/healthz", checker.LivenessHandler())
		mux.HandleFunc("/readyz", checker.ReadinessHandler())
		mux.HandleFunc("/version", health.VersionHandler(Version, GitCommit, BuildDate))
		metricsServer = &http.Server{
			Addr:              cfg.Telemetry.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("metrics listener started",
				"address", cfg.Telemetry.Metrics.Listen,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics listener failed", "error", err)
			}
		}()
		fmt.Printf("✓ Metrics: http://%s%s\n", cfg.Telemetry.Metrics.Listen, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println()
	fmt.Printf("✓ Watching %s\n", cfg.Intake.InboxDir)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("watch", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)

		if err := w.Stop(); err != nil {
			slog.Error("watcher shutdown failed", "error", err)
		}
		cancel()

		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics listener shutdown failed", "error", err)
			}
		}

		fmt.Println("✓ Watcher stopped")
		return nil
	}
}

func printWatchBanner(cfg *config.Config) {
	fmt.Printf("Gatehouse Keystone v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("policy source", "path", cfg.Policy.Path())
	slog.Debug("sensor provider", "provider", cfg.Sensor.Provider, "model", cfg.Sensor.Model)
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled",
			"backend", cfg.Audit.Store.Backend,
			"outbox_dir", cfg.Audit.OutboxDir,
			"runs_dir", cfg.Audit.RunsDir,
		)
	}
}
