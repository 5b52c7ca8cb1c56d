package settings

import "sync"

// valueCache caches per-key reads so the settings file is only parsed on first access
type valueCache struct {
	cache map[string]*cachedValue
	mutex sync.RWMutex
}

// cachedValue represents a cached setting; Present is false for keys known to be unset
type cachedValue struct {
	Value   string
	Present bool
}

func newValueCache() *valueCache {
	return &valueCache{
		cache: make(map[string]*cachedValue),
	}
}

// Get retrieves a cached value
func (cache *valueCache) Get(key string) (*cachedValue, bool) {
	cache.mutex.RLock()
	defer cache.mutex.RUnlock()

	v, exists := cache.cache[key]
	return v, exists
}

// Set stores a value in the cache
func (cache *valueCache) Set(key, value string, present bool) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.cache[key] = &cachedValue{
		Value:   value,
		Present: present,
	}
}

// Clear empties the entire cache
func (cache *valueCache) Clear() {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.cache = make(map[string]*cachedValue)
}

// Len reports how many keys have been resolved
func (cache *valueCache) Len() int {
	cache.mutex.RLock()
	defer cache.mutex.RUnlock()

	return len(cache.cache)
}
