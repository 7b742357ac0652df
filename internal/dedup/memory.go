// Package dedup provides the fast-path seen-URL cache in front of the
// store. A cache miss is always safe; the store remains the authoritative
// dedup mechanism.
package dedup

import (
	"context"
	"sync"
)

// Memory is a map-backed seen cache, the default backend.
type Memory struct {
	mu   sync.RWMutex
	seen map[string]bool
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]bool)}
}

func (m *Memory) Seen(_ context.Context, url string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seen[url]
}

func (m *Memory) Mark(_ context.Context, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[url] = true
}
