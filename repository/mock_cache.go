package repository

import (
	"context"
	"sync"
	"time"
)

type mockEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MockCache is an in-process CacheRepository used in tests and when Redis
// is not configured.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]mockEntry
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]mockEntry),
	}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (m *MockCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := mockEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = entry
	m.mu.Unlock()
	return nil
}
