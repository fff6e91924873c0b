package reportcache

import (
	"context"
	"time"

	"github.com/meridian-books/meridian/internal/platform/querycache"
)

// Memory is a process-local Store backed by the bounded TTL query cache.
type Memory struct {
	cache *querycache.Cache[[]byte]
}

// NewMemory constructs a memory store holding at most maxEntries reports.
func NewMemory(maxEntries int) *Memory {
	return &Memory{cache: querycache.New[[]byte](maxEntries)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	return m.cache.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.cache.Set(key, value, ttl)
}

func (m *Memory) InvalidateClient(_ context.Context, clientID string) int {
	return m.cache.Invalidate(clientPattern(clientID))
}
