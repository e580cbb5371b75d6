package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memory is the process-local Cache backend.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memEntry
	group      singleflight.Group
	keyPrefix  string
	defaultTTL time.Duration
	now        func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory(keyPrefix string, defaultTTL time.Duration) *Memory {
	return &Memory{
		entries:    make(map[string]memEntry),
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := m.lookup(key); ok {
		return data, nil
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	// singleflight collapses concurrent misses on the same key into one
	// computation; late arrivals share the result.
	v, err, _ := m.group.Do(key, func() (any, error) {
		if data, ok := m.lookup(key); ok {
			return data, nil
		}
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.entries[key] = memEntry{data: data, expires: m.now().Add(ttl)}
		m.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (m *Memory) lookup(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (m *Memory) Invalidate(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) Clear(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := len(m.entries)
	m.entries = make(map[string]memEntry)
	return removed, nil
}

func (m *Memory) Info(ctx context.Context) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := 0
	now := m.now()
	for _, e := range m.entries {
		if now.Before(e.expires) {
			live++
		}
	}
	return Info{
		Backend:    "memory",
		Keys:       live,
		KeyPrefix:  m.keyPrefix,
		DefaultTTL: m.defaultTTL,
	}, nil
}
