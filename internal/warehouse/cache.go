//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"sync"
)

// Cache memoizes the aggregate views for repeated reads within a session.
// The trainer and the forecast path iterate the same three views many times;
// loading them once per session is enough because the views only change when
// the warehouse is republished, which calls Invalidate.
type Cache struct {
	mu   sync.Mutex
	load func(ctx context.Context) (*AggregateSet, error)
	aggs *AggregateSet
}

// NewCache creates a cache over the given loader.
func NewCache(load func(ctx context.Context) (*AggregateSet, error)) *Cache {
	return &Cache{load: load}
}

// Get returns the cached aggregate set, loading it on first use.
func (c *Cache) Get(ctx context.Context) (*AggregateSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.aggs != nil {
		return c.aggs, nil
	}
	aggs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.aggs = aggs
	return aggs, nil
}

// Invalidate drops the cached set so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.aggs = nil
	c.mu.Unlock()
}
