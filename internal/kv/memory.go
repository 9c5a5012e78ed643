package kv

import (
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Store used by tests and as a scratch substrate.
type Memory struct {
	mu            sync.RWMutex
	data          map[string]string
	maxValueBytes int
	// failNextSet, when set, makes the next Set return the given error
	// without modifying state. Tests use it to simulate storage faults.
	failNextSet error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// SetMaxValueBytes caps the size of one value; 0 means unlimited.
func (m *Memory) SetMaxValueBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxValueBytes = n
}

// FailNextSet makes the next Set call fail with err.
func (m *Memory) FailNextSet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextSet = err
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextSet != nil {
		err := m.failNextSet
		m.failNextSet = nil
		return err
	}
	if m.maxValueBytes > 0 && len(value) > m.maxValueBytes {
		return &QuotaError{Key: key, Size: len(value), Limit: m.maxValueBytes}
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
