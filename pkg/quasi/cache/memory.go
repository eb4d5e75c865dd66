package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory cache for tests and single runs.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]storedEntry
	seq     int
	closed  bool
}

type storedEntry struct {
	entry    Entry
	sequence int
}

// NewMemoryStore creates a new in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]storedEntry),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.seq++
	out := make([]byte, len(e.Output))
	copy(out, e.Output)

	m.entries[key] = storedEntry{
		entry:    Entry{Mode: e.Mode, Output: out, Created: time.Now().UTC()},
		sequence: m.seq,
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	se, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}

	e := se.entry
	e.Output = make([]byte, len(se.entry.Output))
	copy(e.Output, se.entry.Output)
	return e, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.entries))
	for key, se := range m.entries {
		infos = append(infos, Info{
			Key:       key,
			Mode:      se.entry.Mode,
			Sequence:  se.sequence,
			Timestamp: se.entry.Created,
			Size:      int64(len(se.entry.Output)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.entries, key)
	return nil
}

// Purge implements Store.
func (m *MemoryStore) Purge() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.entries = make(map[string]storedEntry)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}
