package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/routecost/pkg/history"
)

const memoryBackend = "memory"

// MemoryStorage keeps run records in memory.
// Records are kept in insertion order; List sorts on read.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []history.RunRecord
	ids     map[string]struct{}
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		ids: make(map[string]struct{}),
	}
}

// Store appends a copy of record.
func (m *MemoryStorage) Store(ctx context.Context, record *history.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError(memoryBackend, "store", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError(memoryBackend, "store", ErrClosed)
	}
	if _, exists := m.ids[record.ID]; exists {
		return NewStorageError(memoryBackend, "store", ErrDuplicateID)
	}

	m.records = append(m.records, *record)
	m.ids[record.ID] = struct{}{}
	return nil
}

// List returns matching records, most recent first. Records with equal
// timestamps come back newest-inserted first.
func (m *MemoryStorage) List(ctx context.Context, filter Filter) ([]history.RunRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, NewStorageError(memoryBackend, "list", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError(memoryBackend, "list", err)
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, NewStorageError(memoryBackend, "list", ErrClosed)
	}
	out := make([]history.RunRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if filter.matches(&m.records[i]) {
			out = append(out, m.records[i])
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if filter.Offset >= len(out) {
		return []history.RunRecord{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count returns the number of matching records.
func (m *MemoryStorage) Count(ctx context.Context, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, NewStorageError(memoryBackend, "count", ErrClosed)
	}

	var n int64
	for i := range m.records {
		if filter.matches(&m.records[i]) {
			n++
		}
	}
	return n, nil
}

// DeleteBefore removes records recorded before cutoff.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, NewStorageError(memoryBackend, "delete_before", ErrClosed)
	}

	return m.retain(func(r *history.RunRecord) bool {
		return !r.RecordedAt.Before(cutoff)
	}), nil
}

// DeleteOldest removes the oldest records beyond keep.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, NewStorageError(memoryBackend, "delete_oldest", ErrClosed)
	}
	if keep < 0 {
		keep = 0
	}
	excess := int64(len(m.records)) - keep
	if excess <= 0 {
		return 0, nil
	}

	// Order indices oldest first; ties go to the earlier insertion.
	idx := make([]int, len(m.records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.records[idx[a]].RecordedAt.Before(m.records[idx[b]].RecordedAt)
	})

	drop := make(map[string]struct{}, excess)
	for _, i := range idx[:excess] {
		drop[m.records[i].ID] = struct{}{}
	}

	return m.retain(func(r *history.RunRecord) bool {
		_, gone := drop[r.ID]
		return !gone
	}), nil
}

// retain keeps records for which keep returns true and reports how many
// were removed. Callers hold the write lock.
func (m *MemoryStorage) retain(keep func(*history.RunRecord) bool) int64 {
	kept := m.records[:0]
	var removed int64
	for i := range m.records {
		if keep(&m.records[i]) {
			kept = append(kept, m.records[i])
			continue
		}
		delete(m.ids, m.records[i].ID)
		removed++
	}
	m.records = kept
	return removed
}

// Ping reports ErrClosed after Close.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return NewStorageError(memoryBackend, "ping", ErrClosed)
	}
	return nil
}

// Backend returns "memory".
func (m *MemoryStorage) Backend() string {
	return memoryBackend
}

// Close drops all records.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	m.ids = nil
	return nil
}
