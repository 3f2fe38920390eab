package cache

import (
	"sync"
)

// MemoryTier is a bounded, best-effort in-memory accelerator in front of
// the durable tier. It is never authoritative: losing an entry here is not
// an error, and a memory miss always means "consult the durable tier".
type MemoryTier struct {
	data       map[string]*Entry
	maxEntries int
	mutex      sync.RWMutex
}

// NewMemoryTier creates a new bounded in-memory accelerator
func NewMemoryTier(maxEntries int) *MemoryTier {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &MemoryTier{
		data:       make(map[string]*Entry),
		maxEntries: maxEntries,
	}
}

// Get returns the entry for key, or nil when not resident
func (m *MemoryTier) Get(key string) *Entry {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.data[key]
}

// Set stores an entry, evicting an arbitrary resident entry when full.
// Eviction is silent; the durable tier remains the source of truth.
func (m *MemoryTier) Set(key string, entry *Entry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		for victim := range m.data {
			delete(m.data, victim)
			break
		}
	}

	m.data[key] = entry
}

// Delete removes an entry if resident
func (m *MemoryTier) Delete(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
}

// Flush empties the accelerator
func (m *MemoryTier) Flush() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data = make(map[string]*Entry)
}

// Size returns the current number of resident entries (for monitoring)
func (m *MemoryTier) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
