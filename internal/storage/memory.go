package storage

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps state and journal in memory. Nothing survives the
// process; it backs the "memory" backend and tests.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	actions []ActionRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		now:    time.Now,
	}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// RecordActions appends a batch of records.
func (m *MemoryStore) RecordActions(records []ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, records...)
	return nil
}

// History returns records matching the filter, oldest first.
func (m *MemoryStore) History(filter HistoryFilter) ([]ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []ActionRecord{}
	for _, r := range m.actions {
		if filter.matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

// Clear removes every journaled action.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = nil
	return nil
}

// Cleanup removes actions older than retention.
func (m *MemoryStore) Cleanup(retention time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-retention).UnixMilli()
	kept := m.actions[:0]
	var removed int64
	for _, r := range m.actions {
		if r.Timestamp < cutoff {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.actions = kept
	return removed, nil
}

// Len returns the number of journaled actions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.actions)
}
