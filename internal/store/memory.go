package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process KV implementation with real expiry semantics.
// It backs unit tests and local development without a Redis server; it is
// not suitable for multi-instance deployments.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	indexes map[string]map[string]float64

	// now is swappable so tests can control expiry.
	now func() time.Time
}

type memEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memEntry),
		indexes: make(map[string]map[string]float64),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Tests use it to step past TTLs
// without sleeping.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) live(e memEntry) bool {
	return e.expiresAt.IsZero() || m.now().Before(e.expiresAt)
}

// Get implements KV.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.live(e) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set implements KV.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.entry(value, ttl)
	return nil
}

// SetNX implements KV.
func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && m.live(e) {
		return false, nil
	}
	m.entries[key] = m.entry(value, ttl)
	return true, nil
}

// Delete implements KV.
func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Scan implements KV.
func (m *Memory) Scan(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) && m.live(e) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// OrderedAdd implements KV.
func (m *Memory) OrderedAdd(ctx context.Context, key, member string, score float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indexes[key]
	if !ok {
		idx = make(map[string]float64)
		m.indexes[key] = idx
	}
	idx[member] = score
	return nil
}

// OrderedRange implements KV.
func (m *Memory) OrderedRange(ctx context.Context, key string, n int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexes[key]
	if len(idx) == 0 || n <= 0 {
		return nil, nil
	}
	members := make([]string, 0, len(idx))
	for mem := range idx {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := idx[members[i]], idx[members[j]]
		if si == sj {
			return members[i] < members[j]
		}
		return si < sj
	})
	if int64(len(members)) > n {
		members = members[:n]
	}
	return members, nil
}

// OrderedRemove implements KV.
func (m *Memory) OrderedRemove(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexes[key]
	for _, mem := range members {
		delete(idx, mem)
	}
	return nil
}

func (m *Memory) entry(value string, ttl time.Duration) memEntry {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}
