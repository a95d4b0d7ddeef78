package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/record"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProcessor records envelopes and answers with a minimal record.
type stubProcessor struct {
	mu        sync.Mutex
	envelopes []*intake.Envelope
	processed chan string
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{processed: make(chan string, 16)}
}

func (p *stubProcessor) Process(_ context.Context, env *intake.Envelope) (*record.DecisionRecord, error) {
	p.mu.Lock()
	p.envelopes = append(p.envelopes, env)
	p.mu.Unlock()

	rec := &record.DecisionRecord{RunID: record.NewRunID(), Input: *env}
	select {
	case p.processed <- env.RawText:
	default:
	}
	return rec, nil
}

func (p *stubProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.envelopes)
}

func startWatcher(t *testing.T, inbox string, proc Processor) *Watcher {
	t.Helper()

	config := DefaultConfig()
	config.InboxDir = inbox
	config.DebounceInterval = 20 * time.Millisecond

	w, err := NewWatcher(config, proc, testLogger())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(func() { _ = w.Stop() })

	// Give Run time to register the inbox before tests drop files.
	time.Sleep(100 * time.Millisecond)
	return w
}

func waitProcessed(t *testing.T, proc *stubProcessor, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-proc.processed:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("submission %q never processed", want)
		}
	}
}

// TestNewWatcherValidation tests construction requirements
func TestNewWatcherValidation(t *testing.T) {
	if _, err := NewWatcher(&Config{}, newStubProcessor(), testLogger()); err == nil {
		t.Error("NewWatcher() without inbox dir expected error")
	}
	if _, err := NewWatcher(&Config{InboxDir: t.TempDir()}, nil, testLogger()); err == nil {
		t.Error("NewWatcher() without processor expected error")
	}
}

// TestWatcherProcessesDroppedFile tests the drop-process-move flow
func TestWatcherProcessesDroppedFile(t *testing.T) {
	inbox := t.TempDir()
	proc := newStubProcessor()
	startWatcher(t, inbox, proc)

	path := filepath.Join(inbox, "report.txt")
	if err := os.WriteFile(path, []byte("ladder slipped on wet floor"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitProcessed(t, proc, "ladder slipped on wet floor")

	// The file must leave the inbox root for processed/.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("file was not moved out of the inbox")
		}
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := os.ReadDir(filepath.Join(inbox, ProcessedDirName))
	if err != nil {
		t.Fatalf("read processed dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("processed dir entries = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_report.txt") {
		t.Errorf("processed name = %q, want run-id prefix and original name", name)
	}
	if !record.ValidRunID(strings.TrimSuffix(name, "_report.txt")) {
		t.Errorf("processed name %q does not start with a run id", name)
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if proc.envelopes[0].Metadata.Source != "inbox" {
		t.Errorf("envelope source = %q, want inbox", proc.envelopes[0].Metadata.Source)
	}
}

// TestWatcherSweepsExistingFiles tests pickup of files dropped before startup
func TestWatcherSweepsExistingFiles(t *testing.T) {
	inbox := t.TempDir()
	if err := os.WriteFile(filepath.Join(inbox, "early.txt"), []byte("left before startup"), 0o644); err != nil {
		t.Fatal(err)
	}

	proc := newStubProcessor()
	startWatcher(t, inbox, proc)

	waitProcessed(t, proc, "left before startup")
}

// TestWatcherQuarantinesBadFiles tests that unreadable submissions go to failed/
func TestWatcherQuarantinesBadFiles(t *testing.T) {
	inbox := t.TempDir()
	proc := newStubProcessor()
	startWatcher(t, inbox, proc)

	path := filepath.Join(inbox, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := os.ReadDir(filepath.Join(inbox, FailedDirName))
		if err == nil && len(entries) == 1 {
			if !strings.HasSuffix(entries[0].Name(), "_broken.json") {
				t.Errorf("failed name = %q, want timestamp prefix and original name", entries[0].Name())
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("bad file was never quarantined")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := proc.count(); got != 0 {
		t.Errorf("processor saw %d submissions, want 0", got)
	}
}

// TestWatcherIgnoresOtherFiles tests extension and dotfile filtering
func TestWatcherIgnoresOtherFiles(t *testing.T) {
	inbox := t.TempDir()
	proc := newStubProcessor()
	startWatcher(t, inbox, proc)

	for _, name := range []string{"notes.md", ".hidden.txt", "archive.tgz"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("ignored"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Drop one eligible file last and wait for it; by then the ignored
	// files would have been seen too if they were going to be.
	if err := os.WriteFile(filepath.Join(inbox, "real.txt"), []byte("real submission"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitProcessed(t, proc, "real submission")

	if got := proc.count(); got != 1 {
		t.Errorf("processor saw %d submissions, want 1", got)
	}
}

// TestWatcherMultipleFiles tests that simultaneous drops all get processed
func TestWatcherMultipleFiles(t *testing.T) {
	inbox := t.TempDir()
	proc := newStubProcessor()
	startWatcher(t, inbox, proc)

	want := map[string]bool{}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		content := "submission from " + name
		want[content] = true
		if err := os.WriteFile(filepath.Join(inbox, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.After(2 * time.Second)
	for len(want) > 0 {
		select {
		case got := <-proc.processed:
			delete(want, got)
		case <-deadline:
			t.Fatalf("submissions never processed: %v", want)
		}
	}
}

// TestDebouncerPerKey tests that keys do not cancel each other
func TestDebouncerPerKey(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()

	var mu sync.Mutex
	fired := map[string]int{}
	done := make(chan struct{}, 4)

	hit := func(key string) func() {
		return func() {
			mu.Lock()
			fired[key]++
			mu.Unlock()
			done <- struct{}{}
		}
	}

	// Rapid retriggers of one key collapse; a second key stays independent.
	d.trigger("a", hit("a"))
	d.trigger("a", hit("a"))
	d.trigger("b", hit("b"))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("debounced callbacks never fired")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if fired["a"] != 1 {
		t.Errorf("key a fired %d times, want 1", fired["a"])
	}
	if fired["b"] != 1 {
		t.Errorf("key b fired %d times, want 1", fired["b"])
	}
}

// TestDebouncerStopCancelsPending tests that stop suppresses queued work
func TestDebouncerStopCancelsPending(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.trigger("a", func() { fired <- struct{}{} })
	d.stop()

	select {
	case <-fired:
		t.Error("callback fired after stop")
	case <-time.After(150 * time.Millisecond):
	}
}
