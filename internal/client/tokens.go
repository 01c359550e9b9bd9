package client

import "sync"

// TokenStore holds the persisted access/refresh token pair. Implementations
// must be safe for concurrent use; the pair is read on every request and
// rewritten on refresh.
type TokenStore interface {
	Tokens() (access, refresh string)
	Save(access, refresh string) error
	Clear() error
}

// MemoryTokenStore is the in-process TokenStore used by tests and embedded
// callers.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryTokenStore seeds a store with an initial pair.
func NewMemoryTokenStore(access, refresh string) *MemoryTokenStore {
	return &MemoryTokenStore{access: access, refresh: refresh}
}

func (m *MemoryTokenStore) Tokens() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.refresh
}

func (m *MemoryTokenStore) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	return m.Save("", "")
}
