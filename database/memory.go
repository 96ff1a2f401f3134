package database

import (
	"fmt"
	"sync"
)

// MemoryStorage is a map-backed Storage used by tests and dry runs.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	quota  int
	fail   bool
	writes int
}

// NewMemoryStorage returns an empty store. A quota > 0 caps value size.
func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string), quota: quota}
}

// Get returns the value under key and whether it was set.
func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", false, ErrUnavailable
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key, failing with ErrQuotaExceeded when it is larger
// than the quota.
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	if m.quota > 0 && len(value) > m.quota {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	m.values[key] = value
	m.writes++
	return nil
}

// SetFailing makes every later call fail with ErrUnavailable until reset.
func (m *MemoryStorage) SetFailing(fail bool) {
	m.mu.Lock()
	m.fail = fail
	m.mu.Unlock()
}

// Writes counts successful Set calls.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
