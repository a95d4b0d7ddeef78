package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gatehouse-hq/keystone/pkg/audit"
)

func testEntry(runID string, decision string, decidedAt time.Time) *audit.Entry {
	return &audit.Entry{
		RunID:         runID,
		Decision:      decision,
		PolicyVersion: "v1",
		PolicyHash:    "cafe0123",
		Model:         "mock",
		RuleID:        "R-ACCEPT-CLEAN",
		ReasonCodes:   []string{"POLICY_BLOCKED"},
		Flags:         []string{"SUMMARY_TOO_SHORT"},
		ReceivedAt:    decidedAt.Add(-50 * time.Millisecond),
		DecidedAt:     decidedAt,
		DurationMS:    50,
		RawTextHash:   audit.HashString("raw text for " + runID),
		Record:        []byte(`{"run_id":"` + runID + `"}`),
	}
}

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_StoreAndQuery(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	want := testEntry("gh_20250602T140000Z_00000001", "ESCALATED", base)
	if err := s.Store(ctx, want); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Query() returned %d entries, want 1", len(got))
	}

	entry := got[0]
	if entry.RunID != want.RunID {
		t.Errorf("RunID = %q, want %q", entry.RunID, want.RunID)
	}
	if entry.Decision != "ESCALATED" {
		t.Errorf("Decision = %q, want ESCALATED", entry.Decision)
	}
	if entry.RuleID != "R-ACCEPT-CLEAN" {
		t.Errorf("RuleID = %q", entry.RuleID)
	}
	if len(entry.ReasonCodes) != 1 || entry.ReasonCodes[0] != "POLICY_BLOCKED" {
		t.Errorf("ReasonCodes = %v", entry.ReasonCodes)
	}
	if len(entry.Flags) != 1 || entry.Flags[0] != "SUMMARY_TOO_SHORT" {
		t.Errorf("Flags = %v", entry.Flags)
	}
	if !entry.DecidedAt.Equal(base) {
		t.Errorf("DecidedAt = %v, want %v", entry.DecidedAt, base)
	}
	if string(entry.Record) != string(want.Record) {
		t.Errorf("Record = %s, want %s", entry.Record, want.Record)
	}
}

func TestSQLiteStorage_DuplicateRunID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	entry := testEntry("gh_20250602T140000Z_00000001", "ACCEPTED", time.Now().UTC())
	if err := s.Store(ctx, entry); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Store(ctx, entry); err == nil {
		t.Error("expected error storing duplicate run id")
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	decisions := []string{"ACCEPTED", "ESCALATED", "REJECTED", "ESCALATED"}
	for i, d := range decisions {
		e := testEntry(fmt.Sprintf("gh_20250602T14000%dZ_0000000%d", i, i), d, base.Add(time.Duration(i)*time.Minute))
		if i == 2 {
			e.RuleID = "R-REJECT-INJECTION"
		}
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		query *audit.Query
		want  int
	}{
		{name: "all", query: &audit.Query{}, want: 4},
		{name: "by decision", query: &audit.Query{Decision: "ESCALATED"}, want: 2},
		{name: "by rule", query: &audit.Query{RuleID: "R-REJECT-INJECTION"}, want: 1},
		{name: "by model", query: &audit.Query{Model: "mock"}, want: 4},
		{name: "by missing model", query: &audit.Query{Model: "gpt-4o-mini"}, want: 0},
		{
			name:  "since cuts older",
			query: &audit.Query{Since: timePtr(base.Add(90 * time.Second))},
			want:  2,
		},
		{
			name:  "until cuts newer",
			query: &audit.Query{Until: timePtr(base.Add(90 * time.Second))},
			want:  2,
		},
		{
			name:  "since inclusive",
			query: &audit.Query{Since: timePtr(base.Add(time.Minute))},
			want:  3,
		},
		{name: "limit", query: &audit.Query{Limit: 2}, want: 2},
		{name: "offset", query: &audit.Query{Limit: 10, Offset: 3}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSQLiteStorage_QueryOrdering(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := testEntry(fmt.Sprintf("gh_20250602T14000%dZ_0000000%d", i, i), "ACCEPTED", base.Add(time.Duration(i)*time.Second))
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	newestFirst, err := s.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !newestFirst[0].DecidedAt.After(newestFirst[2].DecidedAt) {
		t.Errorf("default order should be newest first, got %v then %v",
			newestFirst[0].DecidedAt, newestFirst[2].DecidedAt)
	}

	oldestFirst, err := s.Query(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !oldestFirst[0].DecidedAt.Before(oldestFirst[2].DecidedAt) {
		t.Errorf("asc order should be oldest first, got %v then %v",
			oldestFirst[0].DecidedAt, oldestFirst[2].DecidedAt)
	}
}

func TestSQLiteStorage_CountAndDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := testEntry(fmt.Sprintf("gh_20250602T14000%dZ_0000000%d", i, i), "ACCEPTED", base.Add(time.Duration(i)*time.Hour))
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	count, err := s.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 5 {
		t.Errorf("Count() = %d, want 5", count)
	}

	cutoff := base.Add(90 * time.Minute)
	deleted, err := s.Delete(ctx, &audit.Query{Until: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Delete() = %d, want 2", deleted)
	}

	count, err = s.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() after delete = %d, want 3", count)
	}
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(&SQLiteConfig{Path: path, WALMode: true, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	entry := testEntry("gh_20250602T140000Z_00000001", "REJECTED", time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC))
	if err := s.Store(ctx, entry); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStorage(&SQLiteConfig{Path: path, WALMode: true, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(ctx, &audit.Query{Decision: "REJECTED"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after reopen = %d, want 1", count)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
