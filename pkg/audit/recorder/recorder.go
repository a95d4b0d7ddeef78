package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/audit/outbox"
	"gatehouse-hq/keystone/pkg/audit/replay"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/record"
)

// Config contains configuration for the decision recorder.
type Config struct {
	// Enabled enables decision recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for persisting one record.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// OutboxDir is the root of the outbox artifact tree.
	// Default: "outbox"
	OutboxDir string

	// RunsDir is the root of the replay bundle tree.
	// Default: "runs"
	RunsDir string
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
		OutboxDir:    outbox.DefaultDir,
		RunsDir:      replay.DefaultDir,
	}
}

// job pairs a Decision Record with the policy document it was decided under,
// so the replay bundle snapshots the exact policy text even if the live
// document is reloaded before the write happens.
type job struct {
	rec *record.DecisionRecord
	doc *policy.Document
}

// Recorder persists Decision Records asynchronously. Records are enqueued to
// a buffered channel and written by a background worker, so the decision path
// never blocks on persistence.
type Recorder struct {
	storage audit.Storage
	config  *Config
	outbox  *outbox.Writer
	bundles *replay.Writer
	jobChan chan *job
	wg      sync.WaitGroup
	done    chan struct{}
	logger  *slog.Logger
}

// NewRecorder creates a decision recorder with the provided storage backend
// and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		outbox:  outbox.NewWriter(config.OutboxDir),
		bundles: replay.NewWriter(config.RunsDir),
		jobChan: make(chan *job, config.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	// Start background worker to drain channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("decision recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"outbox_dir", config.OutboxDir,
		"runs_dir", config.RunsDir,
	)

	return r
}

// Record enqueues a Decision Record for persistence. The policy document is
// the one the decision was evaluated against; its source text lands in the
// replay bundle.
//
// This method returns immediately and does not block on writes.
func (r *Recorder) Record(ctx context.Context, rec *record.DecisionRecord, doc *policy.Document) error {
	if !r.config.Enabled {
		return nil
	}

	select {
	case r.jobChan <- &job{rec: rec, doc: doc}:
		r.logger.Debug("decision record enqueued",
			"run_id", rec.RunID,
			"decision", rec.Decision,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("record channel full, dropping decision record",
			"run_id", rec.RunID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(rec.RunID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping decision record",
			"run_id", rec.RunID,
		)
		return audit.NewRecorderError(rec.RunID, context.Canceled)
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down decision recorder")

	// Signal shutdown
	close(r.done)

	// Wait for worker to finish draining channel
	r.wg.Wait()

	r.logger.Info("decision recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the job channel and persists
// records.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case j := <-r.jobChan:
			r.writeJob(j)

		case <-r.done:
			// Drain remaining jobs from channel before exit
			r.logger.Info("draining record channel before shutdown",
				"pending_count", len(r.jobChan),
			)

			for {
				select {
				case j := <-r.jobChan:
					r.writeJob(j)
				default:
					// Channel is empty, we can exit
					r.logger.Info("record channel drained")
					return
				}
			}
		}
	}
}

// writeJob persists one record in all three forms. Each form is attempted
// independently so a failed outbox write still leaves a queryable store
// entry.
func (r *Recorder) writeJob(j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if path, err := r.outbox.Write(j.rec); err != nil {
		r.logger.Error("failed to write outbox artifact",
			"run_id", j.rec.RunID,
			"error", err,
		)
	} else {
		r.logger.Debug("outbox artifact written",
			"run_id", j.rec.RunID,
			"path", path,
		)
	}

	if dir, err := r.bundles.WriteBundle(j.rec, j.doc); err != nil {
		r.logger.Error("failed to write run bundle",
			"run_id", j.rec.RunID,
			"error", err,
		)
	} else {
		r.logger.Debug("run bundle written",
			"run_id", j.rec.RunID,
			"dir", dir,
		)
	}

	entry, err := audit.NewEntry(j.rec)
	if err != nil {
		r.logger.Error("failed to project store entry",
			"run_id", j.rec.RunID,
			"error", err,
		)
		return
	}
	if err := r.storage.Store(ctx, entry); err != nil {
		r.logger.Error("failed to store decision record",
			"run_id", j.rec.RunID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Info("decision recorded",
		"run_id", j.rec.RunID,
		"decision", j.rec.Decision,
		"rule_id", entry.RuleID,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow decision write",
			"run_id", j.rec.RunID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
