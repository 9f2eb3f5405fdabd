package configstore

import (
	"sort"
	"sync"
)

// MemStore is a map-backed Store for tests and embedded callers.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

// Get returns the entry for key.
func (m *MemStore) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

// Set inserts or replaces an entry.
func (m *MemStore) Set(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Type == "" {
		e.Type = TypeString
	}
	m.entries[e.Key] = e
	return nil
}

// Delete removes an entry. Removing a missing key is a no-op.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// List returns entries, optionally filtered by category, sorted by key.
func (m *MemStore) List(category string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for _, e := range m.entries {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
