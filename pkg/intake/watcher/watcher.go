package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/record"
)

// Subdirectories of the inbox that hold consumed files.
const (
	ProcessedDirName = "processed"
	FailedDirName    = "failed"
)

// Processor takes one submission through the pipeline.
// *pipeline.Gatekeeper satisfies it.
type Processor interface {
	Process(ctx context.Context, env *intake.Envelope) (*record.DecisionRecord, error)
}

// Config contains configuration for the inbox watcher.
type Config struct {
	// InboxDir is the directory watched for submission files.
	InboxDir string

	// Source is the metadata source stamped on inbox submissions.
	// Default: "inbox"
	Source string

	// DebounceInterval is how long a file must stay quiet before it is
	// processed. Writers that stream a file emit several events; the
	// interval collapses them into one pass over the finished file.
	// Default: 100ms
	DebounceInterval time.Duration

	// Extensions is the list of file extensions treated as submissions.
	// Default: [".txt", ".json"]
	Extensions []string

	// SkipHidden controls whether dotfiles are ignored.
	// Default: true
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:           "inbox",
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".txt", ".json"},
		SkipHidden:       true,
	}
}

// Watcher turns files dropped into the inbox into pipeline submissions.
type Watcher struct {
	watcher   *fsnotify.Watcher
	config    *Config
	processor Processor
	logger    *slog.Logger
	debounce  *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates an inbox watcher.
func NewWatcher(config *Config, processor Processor, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.InboxDir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if config.Source == "" {
		config.Source = "inbox"
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:   fsw,
		config:    config,
		processor: processor,
		logger:    logger.With("component", "intake.watcher"),
		debounce:  newDebouncer(config.DebounceInterval),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Run watches the inbox until the context is cancelled or Stop is called.
// Files already present at startup are processed before new events are
// handled.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.prepareDirs(); err != nil {
		return err
	}
	if err := w.watcher.Add(w.config.InboxDir); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}

	w.logger.Info("inbox watcher started",
		"inbox_dir", w.config.InboxDir,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
		"extensions", w.config.Extensions,
	)

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("inbox watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("inbox event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			path := event.Name
			w.debounce.trigger(path, func() {
				w.handleFile(ctx, path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite errors.
			w.logger.Error("inbox watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels pending debounce timers.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// prepareDirs creates the inbox and its consumed-file subdirectories.
func (w *Watcher) prepareDirs() error {
	for _, dir := range []string{
		w.config.InboxDir,
		filepath.Join(w.config.InboxDir, ProcessedDirName),
		filepath.Join(w.config.InboxDir, FailedDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// sweep processes submission files that were already in the inbox when the
// watcher started.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.config.InboxDir)
	if err != nil {
		w.logger.Error("failed to sweep inbox", "error", err)
		return
	}

	swept := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !w.eligibleName(name) {
			continue
		}
		w.handleFile(ctx, filepath.Join(w.config.InboxDir, name))
		swept++
	}

	if swept > 0 {
		w.logger.Info("swept existing inbox files", "count", swept)
	}
}

// handleFile runs one inbox file through the pipeline and moves it to
// processed/ or failed/. Nothing here aborts the watcher; a bad file is
// quarantined and the next one is handled normally.
func (w *Watcher) handleFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// Already moved, or a directory named like a submission.
		return
	}

	env, err := intake.ReadSubmissionFile(path, w.config.Source)
	if err != nil {
		w.logger.Error("unreadable submission file",
			"path", path,
			"error", err,
		)
		w.quarantine(path)
		return
	}

	rec, err := w.processor.Process(ctx, env)
	if err != nil {
		w.logger.Error("failed to process submission",
			"path", path,
			"error", err,
		)
		w.quarantine(path)
		return
	}

	dest := filepath.Join(w.config.InboxDir, ProcessedDirName,
		fmt.Sprintf("%s_%s", rec.RunID, filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Error("failed to move processed file",
			"path", path,
			"error", err,
		)
		return
	}

	w.logger.Info("inbox submission processed",
		"file", filepath.Base(path),
		"run_id", rec.RunID,
		"decision", rec.Decision,
	)
}

// quarantine moves an unusable file to failed/ so it cannot wedge the inbox.
func (w *Watcher) quarantine(path string) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	dest := filepath.Join(w.config.InboxDir, FailedDirName,
		fmt.Sprintf("%s_%s", stamp, filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Error("failed to quarantine file",
			"path", path,
			"error", err,
		)
	}
}

// shouldProcessEvent filters events down to finished submission files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return w.eligibleName(filepath.Base(event.Name))
}

// eligibleName reports whether a file name looks like a submission.
func (w *Watcher) eligibleName(name string) bool {
	if w.config.SkipHidden && strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// debouncer coalesces event bursts per file path. Unlike a single-shot
// debouncer, distinct files dropped at the same time never cancel each
// other's processing.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// trigger schedules fn for the key after the quiet period, resetting any
// pending timer for the same key.
func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		fn()
	})
}

// stop cancels all pending timers.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
}
