package limiter

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is an in-process Limiter.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*memEntry
}

var _ Limiter = (*Memory)(nil)

// NewMemory constructs an in-process limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, now: time.Now, entries: map[string]*memEntry{}}
}

func memKey(account string, ipHash []byte) string { return account + "\x00" + string(ipHash) }

// Allow reports whether login is currently allowed and a retry-after duration.
func (m *Memory) Allow(_ context.Context, account string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memKey(account, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets the failures of (account, ip).
func (m *Memory) Success(_ context.Context, account string, ipHash []byte) error {
	m.mu.Lock()
	delete(m.entries, memKey(account, ipHash))
	m.mu.Unlock()
	return nil
}

// Failure records a failed attempt and blocks once MaxFails is reached within Window.
func (m *Memory) Failure(_ context.Context, account string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := memKey(account, ipHash)
	e, ok := m.entries[k]
	if !ok || now.Sub(e.updatedAt) > m.policy.Window {
		e = &memEntry{}
		m.entries[k] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails >= m.policy.MaxFails {
		e.blockedUntil = now.Add(m.policy.BlockFor)
		return true, m.policy.BlockFor, nil
	}
	return false, 0, nil
}
