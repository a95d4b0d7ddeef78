// Package telemetry groups the observability packages for Gatehouse
// Keystone.
//
// # Components
//
//   - logging: slog-based structured logging with secret redaction
//   - metrics: Prometheus collectors for the pipeline, policy engine,
//     and sensor
//   - health: liveness and readiness probes for the watch listener
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
//	mux.Handle("/metrics", collector.Handler())
//
// The pipeline takes the collector through its Options; decisions,
// rule hits, and sensor latency all land in the same registry the
// listener serves.
package telemetry
