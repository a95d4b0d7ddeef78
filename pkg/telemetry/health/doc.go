// Package health provides the probe endpoints for the Gatehouse watch
// listener.
//
// # Overview
//
// When `gatehouse watch` runs as a service, its HTTP listener exposes
// liveness and readiness probes alongside the Prometheus metrics
// endpoint. Liveness answers "is the process up"; readiness answers
// "can this watcher accept submissions right now", which additionally
// requires the inbox directory and the audit store to be reachable.
//
// # Endpoints
//
//   - /healthz: liveness probe, always 200 while the process serves HTTP
//   - /readyz: readiness probe, 503 when any component check fails
//   - /version: build information (version, commit, build time)
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//
//	checker.RegisterCheck("audit_store", func(ctx context.Context) error {
//	    _, err := storage.Count(ctx, &audit.Query{Limit: 1})
//	    return err
//	})
//	checker.RegisterCheck("inbox", func(ctx context.Context) error {
//	    _, err := os.Stat(inboxDir)
//	    return err
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//	mux.HandleFunc("/version", health.VersionHandler(version, commit, buildTime))
//
// # Responses
//
// Ready:
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "audit_store": {"status": "ok", "duration_ms": 1200000},
//	        "inbox": {"status": "ok", "duration_ms": 80000}
//	    },
//	    "timestamp": "2025-06-01T10:30:00Z"
//	}
//
// Degraded (HTTP 503):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "audit_store": {"status": "unhealthy", "message": "database is locked"},
//	        "inbox": {"status": "ok"}
//	    },
//	    "timestamp": "2025-06-01T10:30:00Z"
//	}
//
// Component checks run concurrently, each bounded by the Checker's
// timeout, so a hung store cannot wedge the probe.
package health
