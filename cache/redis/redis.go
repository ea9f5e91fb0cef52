// Package redis provides an exact-match LLM cache backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/viant/vendly/cache"
	"github.com/viant/vendly/llms"
)

const defaultPrefix = "llmcache:"

// Option configures the Redis cache.
type Option func(*Cache)

// WithPrefix overrides the key prefix (default: llmcache:).
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets a time-to-live on stored entries; zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// Cache is an exact-match cache.LLMCache over a Redis client.
type Cache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Redis cache over an existing client.
func New(client *goredis.Client, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis: client is required")
	}
	c := &Cache{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns the cached generations, or nil when absent.
func (c *Cache) Lookup(ctx context.Context, prompt, llmString string) ([]llms.Generation, error) {
	key, err := c.key(prompt, llmString)
	if err != nil {
		return nil, err
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var generations []llms.Generation
	if err := json.Unmarshal(data, &generations); err != nil {
		return nil, fmt.Errorf("redis: decode entry: %w", err)
	}
	return generations, nil
}

// Update stores generations for the prompt.
func (c *Cache) Update(ctx context.Context, prompt, llmString string, generations []llms.Generation) error {
	key, err := c.key(prompt, llmString)
	if err != nil {
		return err
	}
	data, err := json.Marshal(generations)
	if err != nil {
		return fmt.Errorf("redis: encode entry: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Clear removes every entry under the cache prefix.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) key(prompt, llmString string) (string, error) {
	key, err := cache.Key(prompt, llmString)
	if err != nil {
		return "", err
	}
	return c.prefix + key, nil
}
