package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gatehouse-hq/keystone/pkg/audit"
	"gatehouse-hq/keystone/pkg/audit/store"
)

func storeEntries(t *testing.T, memory *store.MemoryStorage, agesInDays ...int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	for i, age := range agesInDays {
		entry := &audit.Entry{
			RunID:         fmt.Sprintf("gh_20250314T092653Z_%08x", i),
			Decision:      "REJECTED",
			PolicyVersion: "v1",
			Model:         "mock",
			ReceivedAt:    now.AddDate(0, 0, -age),
			DecidedAt:     now.AddDate(0, 0, -age),
		}
		if err := memory.Store(ctx, entry); err != nil {
			t.Fatalf("Store() %d failed: %v", i, err)
		}
	}
}

func TestPruner_PruneOldEntries(t *testing.T) {
	memory := store.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7

	pruner := NewPruner(memory, config)
	ctx := context.Background()

	storeEntries(t, memory, 10, 8, 5, 3)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted = %d, want 2", deleted)
	}

	count, _ := memory.Count(ctx, &audit.Query{})
	if count != 2 {
		t.Errorf("remaining entries = %d, want 2", count)
	}
}

func TestPruner_RetentionDisabled(t *testing.T) {
	memory := store.NewMemoryStorage()
	config := &Config{RetentionDays: 0, MaxRecords: 0}

	pruner := NewPruner(memory, config)
	ctx := context.Background()

	storeEntries(t, memory, 100, 400)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted = %d, want 0 with retention disabled", deleted)
	}
	if memory.Size() != 2 {
		t.Errorf("store size = %d, want 2", memory.Size())
	}
}

func TestPruner_MaxRecords(t *testing.T) {
	memory := store.NewMemoryStorage()
	config := &Config{RetentionDays: 0, MaxRecords: 3}

	pruner := NewPruner(memory, config)
	ctx := context.Background()

	// Distinct ages so the count cutoff is unambiguous.
	storeEntries(t, memory, 9, 7, 5, 3, 1)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted = %d, want 2", deleted)
	}

	// The three newest entries survive.
	remaining, err := memory.Query(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("remaining entries = %d, want 3", len(remaining))
	}
	oldestKept := time.Now().AddDate(0, 0, -6)
	if remaining[0].DecidedAt.Before(oldestKept) {
		t.Errorf("oldest survivor decided at %v, want newer than %v", remaining[0].DecidedAt, oldestKept)
	}
}

func TestPruner_MaxRecordsUnderLimit(t *testing.T) {
	memory := store.NewMemoryStorage()
	config := &Config{RetentionDays: 0, MaxRecords: 10}

	pruner := NewPruner(memory, config)
	ctx := context.Background()

	storeEntries(t, memory, 2, 1)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted = %d, want 0 under the limit", deleted)
	}
}

func TestPruner_BothPhases(t *testing.T) {
	memory := store.NewMemoryStorage()
	config := &Config{RetentionDays: 30, MaxRecords: 2}

	pruner := NewPruner(memory, config)
	ctx := context.Background()

	// Two beyond the window, three inside it; the count phase then trims
	// the three down to two.
	storeEntries(t, memory, 60, 40, 20, 10, 1)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted = %d, want 3", deleted)
	}
	if memory.Size() != 2 {
		t.Errorf("store size = %d, want 2", memory.Size())
	}
}

func TestDefaultConfig_Retention(t *testing.T) {
	config := DefaultConfig()
	if config.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", config.RetentionDays)
	}
	if config.MaxRecords != 0 {
		t.Errorf("MaxRecords = %d, want 0", config.MaxRecords)
	}
	if config.Schedule != "0 3 * * *" {
		t.Errorf("Schedule = %q, want %q", config.Schedule, "0 3 * * *")
	}
}
