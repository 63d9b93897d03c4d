package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
	"time"
)

// ImportCache memoises import lists per file path. An entry is reused only
// while the file content digest matches.
type ImportCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	digest    string
	imports   []string
	timestamp time.Time
}

func NewImportCache(maxSize int, ttl time.Duration) *ImportCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ImportCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func contentDigest(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:16])
}

func (c *ImportCache) Get(path, content string) ([]string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[path]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.digest != contentDigest(content) {
		c.mu.Lock()
		delete(c.entries, path)
		c.removeFromOrder(path)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(path)
	c.mu.Unlock()

	return slices.Clone(entry.imports), true
}

func (c *ImportCache) Put(path, content string, imports []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{
		digest:    contentDigest(content),
		imports:   slices.Clone(imports),
		timestamp: time.Now(),
	}

	if _, exists := c.entries[path]; exists {
		c.entries[path] = entry
		c.moveToEnd(path)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[path] = entry
	c.order = append(c.order, path)
}

func (c *ImportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *ImportCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ImportCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ImportCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ImportCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

type ImportExtractor interface {
	ExtractImports(content string) []string
}

// CachedImports reads files through the cache before asking extractor.
type CachedImports struct {
	extractor ImportExtractor
	cache     *ImportCache
}

func NewCachedImports(extractor ImportExtractor, cache *ImportCache) *CachedImports {
	return &CachedImports{
		extractor: extractor,
		cache:     cache,
	}
}

func (r *CachedImports) Imports(path, content string) []string {
	if imports, hit := r.cache.Get(path, content); hit {
		return imports
	}

	imports := r.extractor.ExtractImports(content)
	r.cache.Put(path, content, imports)

	return imports
}
