package vault

import (
	"sync"
	"time"
)

// cacheEntry is one cached plaintext with its expiry instant.
type cacheEntry struct {
	plaintext string
	expiresAt time.Time
}

// secretCache is a process-local TTL cache for decrypted secrets.
// It is deliberately an explicit object with an injected clock rather
// than a package-level singleton, so tests can drive eviction
// deterministically. The cache is eventually consistent across
// processes: a secret rotated elsewhere stays stale here until its TTL
// lapses.
type secretCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// newSecretCache creates a cache with the given TTL and clock.
func newSecretCache(ttl time.Duration, now func() time.Time) *secretCache {
	return &secretCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// cacheKey builds the map key for a (service, key) pair. Service names
// and key names never contain "/" (enforced at the admin boundary).
func cacheKey(service, key string) string {
	return service + "/" + key
}

// get returns the cached plaintext for the pair if present and fresh.
func (c *secretCache) get(service, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(service, key)]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, cacheKey(service, key))
		return "", false
	}
	return entry.plaintext, true
}

// set stores the plaintext for the pair with a fresh TTL.
func (c *secretCache) set(service, key, plaintext string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(service, key)] = cacheEntry{
		plaintext: plaintext,
		expiresAt: c.now().Add(c.ttl),
	}
}

// evict drops the cached entry for the pair, if any.
func (c *secretCache) evict(service, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey(service, key))
}

// evictService drops every cached entry for the service.
func (c *secretCache) evictService(service string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := service + "/"
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}
