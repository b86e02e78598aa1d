package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitech02/WanderWise/internal/climate"
)

type memoryEntry struct {
	label     climate.Label
	expiresAt time.Time
}

// Memory is an in-process ClimateCache. When full, it drops expired entries
// first and then the entry closest to expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, country string) (climate.Label, bool) {
	key := normalizeKey(country)

	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		m.evictions.Add(1)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		m.misses.Add(1)
		return climate.Unknown, false
	}
	m.hits.Add(1)
	return e.label, true
}

func (m *Memory) Set(_ context.Context, country string, label climate.Label) error {
	key := normalizeKey(country)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.pruneLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
	}
	m.entries[key] = memoryEntry{label: label, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, country string) error {
	m.mu.Lock()
	delete(m.entries, normalizeKey(country))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Prune(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneLocked(m.now()), nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	n := len(m.entries)
	m.mu.Unlock()
	return Stats{
		Backend:   "memory",
		Entries:   int64(n),
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		TTL:       m.ttl,
	}, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) pruneLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	m.evictions.Add(int64(removed))
	return removed
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range m.entries {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
		m.evictions.Add(1)
	}
}
