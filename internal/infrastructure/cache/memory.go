package cache

import (
	"context"
	"time"

	expirable "github.com/go-pkgz/expirable-cache/v3"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
)

// MemoryCache is an in-process LRU cache for single-node deployments and
// tests. It never fails.
type MemoryCache struct {
	c expirable.Cache[string, string]
}

var _ contract.ICache = (*MemoryCache)(nil)

// NewMemoryCache holds at most maxKeys entries, evicting the least recently
// used. A zero ttl keeps entries until they are evicted.
func NewMemoryCache(maxKeys int, ttl time.Duration) *MemoryCache {
	c := expirable.NewCache[string, string]().WithMaxKeys(maxKeys).WithLRU()
	if ttl > 0 {
		c = c.WithTTL(ttl)
	}
	return &MemoryCache{c: c}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	return v, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, 0)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Invalidate(key)
	return nil
}

// Len reports the number of live entries.
func (m *MemoryCache) Len() int {
	return m.c.Len()
}
