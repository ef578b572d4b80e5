package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyExpansion          = "marketwire:expansion:%s"
	defaultExpansionTTL   = 24 * time.Hour
	defaultMemoryCapacity = 1024
)

// expansion cache shared across server instances
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultExpansionTTL
	}

	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Expansion, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(keyExpansion, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read expansion: %w", err)
	}

	var exp Expansion
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached expansion: %w", err)
	}

	return &exp, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, exp *Expansion) error {
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to encode expansion: %w", err)
	}

	if err := c.client.Set(ctx, fmt.Sprintf(keyExpansion, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write expansion: %w", err)
	}

	return nil
}

type memoryEntry struct {
	exp       Expansion
	expiresAt time.Time
}

// in-process expansion cache with a fixed capacity; oldest entries go first
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}

	if ttl <= 0 {
		ttl = defaultExpansionTTL
	}

	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Expansion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}

	exp := entry.exp
	exp.Terms = append([]string(nil), entry.exp.Terms...)

	return &exp, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, exp *Expansion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}

	stored := *exp
	stored.Terms = append([]string(nil), exp.Terms...)
	c.entries[key] = memoryEntry{exp: stored, expiresAt: c.now().Add(c.ttl)}

	for len(c.order) > c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}

	return nil
}
