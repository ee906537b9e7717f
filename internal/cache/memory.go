package cache

import (
	"context"
	"sync"
	"time"
)

// Memory implements Cache in process memory. It backs single-instance
// deployments without Redis and the test suite. The clock is injectable for
// TTL tests.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// sweepInterval bounds how often Set scans for expired entries, so abandoned
// keys are reclaimed without a background goroutine.
const sweepInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an in-memory cache whose Get re-arms keys with ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	now := m.now()
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}

	// Sliding expiration: reading a key keeps it alive.
	if !entry.expiresAt.IsZero() {
		entry.expiresAt = now.Add(m.ttl)
		m.entries[key] = entry
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry
	m.maybeSweep(now)
	return nil
}

// maybeSweep reaps expired entries at most once per sweepInterval. The
// caller holds the lock.
func (m *Memory) maybeSweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
