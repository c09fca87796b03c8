package deckgen

import (
	"container/list"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the template map cache
type CacheConfig struct {
	// MaxSize is the maximum number of template maps to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached template maps. 0 means no expiration.
	TTL time.Duration
}

// TemplateMapCache caches parsed template maps by file path, so repeated
// definitions against one template do not re-read the map file
type TemplateMapCache struct {
	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
}

type cacheEntry struct {
	key     string
	tm      *TemplateMap
	expiry  time.Time
	element *list.Element
}

// NewTemplateMapCache creates a new template map cache with default configuration
func NewTemplateMapCache() *TemplateMapCache {
	config := GetGlobalConfig()
	return NewTemplateMapCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewTemplateMapCacheWithConfig creates a new template map cache with the given configuration
func NewTemplateMapCacheWithConfig(config CacheConfig) *TemplateMapCache {
	return &TemplateMapCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
	}
}

// Load retrieves the template map for path from cache or parses the file
func (tc *TemplateMapCache) Load(path string) (*TemplateMap, error) {
	// Check if caching is disabled
	if tc.config.MaxSize == 0 {
		return LoadTemplateMap(path)
	}

	// Try to get from cache first
	if tm, ok := tc.Get(path); ok {
		return tm, nil
	}

	// Not in cache or expired, need to parse
	tm, err := LoadTemplateMap(path)
	if err != nil {
		return nil, err
	}

	tc.Set(path, tm)
	return tm, nil
}

// Get retrieves a template map from cache without parsing a new one
func (tc *TemplateMapCache) Get(key string) (*TemplateMap, bool) {
	tc.mu.RLock()
	entry, exists := tc.cache[key]
	tc.mu.RUnlock()

	if !exists {
		return nil, false
	}

	// Check expiry
	if tc.config.TTL > 0 && time.Now().After(entry.expiry) {
		tc.Remove(key)
		return nil, false
	}

	// Move to front of LRU
	tc.mu.Lock()
	tc.lru.MoveToFront(entry.element)
	tc.mu.Unlock()

	return entry.tm, true
}

// Set adds a template map to the cache
func (tc *TemplateMapCache) Set(key string, tm *TemplateMap) {
	// Check if caching is disabled
	if tc.config.MaxSize == 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	// Check if key already exists
	if existing, exists := tc.cache[key]; exists {
		// Update existing entry
		existing.tm = tm
		existing.expiry = time.Now().Add(tc.config.TTL)
		tc.lru.MoveToFront(existing.element)
		return
	}

	// Check if we need to evict
	if tc.lru.Len() >= tc.config.MaxSize {
		// Evict least recently used
		oldest := tc.lru.Back()
		if oldest != nil {
			oldEntry := oldest.Value.(*cacheEntry)
			delete(tc.cache, oldEntry.key)
			tc.lru.Remove(oldest)
		}
	}

	// Create new entry
	expiry := time.Time{}
	if tc.config.TTL > 0 {
		expiry = time.Now().Add(tc.config.TTL)
	}

	entry := &cacheEntry{
		key:    key,
		tm:     tm,
		expiry: expiry,
	}

	// Add to LRU list
	element := tc.lru.PushFront(entry)
	entry.element = element

	// Add to cache map
	tc.cache[key] = entry
}

// Remove removes a template map from the cache
func (tc *TemplateMapCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[key]
	if !exists {
		return
	}

	delete(tc.cache, key)
	tc.lru.Remove(entry.element)
}

// Clear removes all template maps from the cache
func (tc *TemplateMapCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.cache = make(map[string]*cacheEntry)
	tc.lru = list.New()
}

// Size returns the current number of cached template maps
func (tc *TemplateMapCache) Size() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.cache)
}

// defaultCache is a global cache instance for convenience
var defaultCache = NewTemplateMapCache()
