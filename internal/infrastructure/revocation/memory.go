package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process revocation registry backed by a map keyed by jti.
// A background sweep discards entries past their expiry so memory stays
// bounded by the number of live revocations.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemory creates an in-memory registry. When sweepInterval is positive a
// background goroutine evicts expired entries at that cadence; Close stops it.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go m.run(sweepInterval)
	}
	return m
}

// Record inserts a jti until its expiry. The check-and-insert runs under the
// write lock, so exactly one of any set of concurrent callers observes first.
func (m *Memory) Record(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	now := time.Now()
	if !expiresAt.After(now) {
		// Nothing to retain: the token can no longer pass expiry checks.
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if exp, ok := m.entries[jti]; ok && exp.After(now) {
		return false, nil
	}
	m.entries[jti] = expiresAt
	return true, nil
}

// IsRevoked checks whether the jti is currently revoked
func (m *Memory) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	// Expired entries are treated as absent; the sweeper removes them.
	return exp.After(time.Now()), nil
}

// Sweep removes entries whose expiry has passed
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for jti, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, jti)
		}
	}
}

// Close stops the background sweeper
func (m *Memory) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

func (m *Memory) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.done:
			return
		}
	}
}
