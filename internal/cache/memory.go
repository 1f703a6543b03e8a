package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is the in-process level: a size-bounded LRU of JSON payloads.
// The LRU's own TTL is the upper bound; shorter per-entry TTLs are checked
// on read.
type MemoryCache struct {
	lru    *expirable.LRU[string, memoryEntry]
	maxTTL time.Duration
	now    func() time.Time
}

func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	if maxTTL <= 0 {
		maxTTL = 5 * time.Minute
	}
	return &MemoryCache{
		lru:    expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

func (m *MemoryCache) Set(key string, data []byte, ttl time.Duration) {
	if ttl <= 0 || ttl > m.maxTTL {
		ttl = m.maxTTL
	}
	m.lru.Add(key, memoryEntry{data: data, expiresAt: m.now().Add(ttl)})
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return nil, false
	}
	return entry.data, true
}

func (m *MemoryCache) Delete(key string) {
	m.lru.Remove(key)
}

// DeletePrefix removes every key starting with prefix and returns how many
// were dropped.
func (m *MemoryCache) DeletePrefix(prefix string) int {
	removed := 0
	for _, key := range m.lru.Keys() {
		if strings.HasPrefix(key, prefix) && m.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

func (m *MemoryCache) Purge() {
	m.lru.Purge()
}

func (m *MemoryCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"entries":         m.lru.Len(),
		"max_ttl_seconds": m.maxTTL.Seconds(),
	}
}
