// Package cache keeps recently read objects in memory.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config cache configuration
type Config struct {
	// MaxEntries maximum number of cached items, 0 means unlimited
	MaxEntries int `yaml:"max-entries,omitempty" toml:"max-entries,omitempty" json:"max_entries,omitempty"`
	// TTL how long an item stays cached after it was set, 0 means forever
	TTL time.Duration `yaml:"ttl,omitempty" toml:"ttl,omitempty" json:"ttl,omitempty"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("cache max entries cannot be negative: %d", c.MaxEntries)
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative: %s", c.TTL)
	}
	return nil
}

// MemoryCache in-memory LRU cache whose items expire after the configured TTL.
// Safe for concurrent use.
type MemoryCache[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewMemoryCache creates a memory cache
func NewMemoryCache[V any](config *Config) (*MemoryCache[V], error) {
	if config == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MemoryCache[V]{
		lru: expirable.NewLRU[string, V](config.MaxEntries, nil, config.TTL),
	}, nil
}

// Get retrieves a cache item
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set sets a cache item, evicting the least recently used one when full
func (c *MemoryCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete deletes a cache item
func (c *MemoryCache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Count returns the number of cached items
func (c *MemoryCache[V]) Count() int {
	return c.lru.Len()
}

// Keys returns the cached keys from oldest to newest
func (c *MemoryCache[V]) Keys() []string {
	return c.lru.Keys()
}

// Close drops every cached item
func (c *MemoryCache[V]) Close() error {
	c.lru.Purge()
	return nil
}
