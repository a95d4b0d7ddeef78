package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gatehouse-hq/keystone/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory map. It exists
// for tests and --dry-run; nothing it stores survives the process.
type MemoryStorage struct {
	entries map[string]*audit.Entry
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]*audit.Entry),
	}
}

// Store persists an entry in memory.
func (s *MemoryStorage) Store(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.RunID]; exists {
		return audit.NewStorageError("memory", "store",
			fmt.Errorf("duplicate run id %q", entry.RunID))
	}

	entryCopy := *entry
	s.entries[entry.RunID] = &entryCopy
	return nil
}

// Query retrieves entries matching the filters, ordered by decided_at.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*audit.Entry{}
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			entryCopy := *entry
			matched = append(matched, &entryCopy)
		}
	}

	asc := strings.EqualFold(query.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].DecidedAt, matched[j].DecidedAt
		if ti.Equal(tj) {
			if asc {
				return matched[i].RunID < matched[j].RunID
			}
			return matched[i].RunID > matched[j].RunID
		}
		if asc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	start := query.Offset
	if start > len(matched) {
		return []*audit.Entry{}, nil
	}
	matched = matched[start:]

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count returns the number of entries matching the filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes entries matching the filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, entry := range s.entries {
		if matchesQuery(entry, query) {
			delete(s.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close empties the store.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*audit.Entry)
	return nil
}

// matchesQuery checks one entry against the query filters.
func matchesQuery(entry *audit.Entry, query *audit.Query) bool {
	if query.Decision != "" && entry.Decision != query.Decision {
		return false
	}
	if query.RuleID != "" && entry.RuleID != query.RuleID {
		return false
	}
	if query.Model != "" && entry.Model != query.Model {
		return false
	}
	if query.PolicyVersion != "" && entry.PolicyVersion != query.PolicyVersion {
		return false
	}
	if query.Since != nil && entry.DecidedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && entry.DecidedAt.After(*query.Until) {
		return false
	}
	return true
}

// GetByRunID retrieves a single entry by run id (for tests).
func (s *MemoryStorage) GetByRunID(runID string) *audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[runID]
	if !ok {
		return nil
	}
	entryCopy := *entry
	return &entryCopy
}

// Size returns the number of stored entries (for tests).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
