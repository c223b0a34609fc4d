package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memory is an in-process Cache backed by a mutex-guarded map.
// Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	group   singleflight.Group
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if value, err := m.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err, _ := m.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have loaded
		// the key while this one waited.
		if value, err := m.Get(ctx, key); err == nil {
			return value, nil
		}
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.Set(ctx, key, loaded, ttl); err != nil {
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

func (m *Memory) GetOrDefault(ctx context.Context, key string, def []byte) []byte {
	if value, err := m.Get(ctx, key); err == nil {
		return value
	}
	return def
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}
