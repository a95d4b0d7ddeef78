package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status classifies a probe outcome.
type Status string

const (
	// StatusOK means the process (or a single component) is healthy.
	StatusOK Status = "ok"

	// StatusReady means every registered component check passed.
	StatusReady Status = "ready"

	// StatusDegraded means at least one component check failed. The
	// watcher keeps running, but the listener reports it so an operator
	// or orchestrator can hold traffic.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy marks an individual component that failed its check.
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc probes one component. A nil return means healthy; an error
// describes what is wrong. Checks must respect ctx cancellation.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// Snapshot is a point-in-time view of watcher health, returned by both
// probes and serialized onto the wire as-is.
type Snapshot struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Checker runs registered component checks for the watch listener's
// probe endpoints. Safe for concurrent use.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New returns a Checker that bounds each component check by checkTimeout.
// A zero timeout defaults to 5 seconds.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck adds a named component check. Registering the same name
// again replaces the previous check.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Liveness reports whether the process is up. It never runs component
// checks, so it stays cheap enough for tight probe intervals.
func (c *Checker) Liveness() Snapshot {
	return Snapshot{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered component check concurrently and
// aggregates the results. Any failing component degrades the snapshot;
// with no checks registered the watcher is trivially ready.
func (c *Checker) Readiness(ctx context.Context) Snapshot {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return Snapshot{
			Status:    StatusReady,
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			result := c.runCheck(ctx, check)
			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Snapshot{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes one check bounded by the configured timeout. A check
// that overruns is reported unhealthy; its goroutine finishes in the
// background and the buffered channel keeps it from leaking.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:   StatusUnhealthy,
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return CheckResult{
			Status:   StatusOK,
			Duration: duration,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:   StatusUnhealthy,
			Message:  fmt.Sprintf("check timed out after %s", c.checkTimeout),
			Duration: time.Since(start),
		}
	}
}
