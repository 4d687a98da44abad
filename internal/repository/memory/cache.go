package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ntwari02/proviQuiz/internal/repository"
)

type cacheEntry struct {
	value   string
	expires time.Time
}

// Cache mirrors RedisRepository with a map and lazy expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) getLocked(key string) (string, bool) {
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *Cache) setLocked(key, value string, ttl time.Duration) {
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
}

func (c *Cache) SaveStructCached(ctx context.Context, key string, model any, ttl time.Duration) error {
	val, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("error saving struct to cache: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, string(val), ttl)
	return nil
}

func (c *Cache) GetStructCached(ctx context.Context, key string, model any) error {
	c.mu.Lock()
	val, ok := c.getLocked(key)
	c.mu.Unlock()
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal([]byte(val), model)
}

func (c *Cache) Reserve(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.getLocked(key); ok {
		return false, nil
	}
	c.setLocked(key, value, ttl)
	return true, nil
}

func (c *Cache) GetString(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.getLocked(key)
	if !ok {
		return "", repository.ErrCacheMiss
	}
	return val, nil
}

func (c *Cache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, ttl)
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
