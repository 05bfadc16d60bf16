package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a translation stays reusable.
const DefaultCacheTTL = 30 * time.Minute

// CacheKey derives a deterministic cache key from the language pair and the
// hash of the trimmed text. Identical requests always map to the same key;
// a text hash collision only risks serving a stale translation, never a
// correctness failure.
func CacheKey(sourceLang, targetLang, text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return sourceLang + ":" + targetLang + ":" + hex.EncodeToString(sum[:])
}

// Entry is one cached translation. Entries are immutable; Put replaces.
type Entry struct {
	Translation string
	CreatedAt   time.Time
}

// Cache is an in-memory TTL cache safe for concurrent use. Expired entries
// read as absent and stay in memory until Sweep removes them; the dispatcher
// runs Sweep periodically.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache builds a cache with the given TTL. Non-positive TTLs fall back
// to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry for key. Entries past the TTL report absent.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Put stores a translation stamped with the current time, replacing any
// previous entry. Concurrent writers for the same key race benignly; the
// last write wins.
func (c *Cache) Put(key, translation string) {
	entry := Entry{Translation: translation, CreatedAt: c.now()}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns the removed count.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(entry Entry) bool {
	return c.now().Sub(entry.CreatedAt) > c.ttl
}
