// Package query caches reads keyed by logical path.
//
// Entries never go stale by default and are dropped only on explicit
// invalidation. Concurrent cold reads of the same key share one fetch. Failed
// fetches are not cached and are never retried.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/okian/regmatrix/pkg/logger"
	"github.com/okian/regmatrix/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the JSON behind key. A nil result with a nil error is a null
// result and is cached like any other value.
type Fetcher func(ctx context.Context, key string) (json.RawMessage, error)

type entry struct {
	data      json.RawMessage
	fetchedAt time.Time
}

// Client is a read-through cache over a Fetcher. It is safe for concurrent use.
type Client struct {
	fetch Fetcher

	mu      sync.RWMutex
	entries map[string]entry
	// A fetch stores its result only if neither the epoch (bumped by
	// InvalidateAll) nor its key's generation (bumped by Invalidate) moved
	// while it ran.
	epoch uint64
	gens  map[string]uint64

	group singleflight.Group

	staleTime time.Duration
	now       func() time.Time
	logger    logger.Logger
}

// NewClient creates a Client over fetch.
func NewClient(fetch Fetcher, opts ...Option) *Client {
	c := &Client{
		fetch:   fetch,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Nop()
	}
	return c
}

// Fetch returns the cached data for key, loading it on a miss.
//
// The shared fetch keeps the values of the caller that started it but not its
// cancellation, so one caller giving up never fails the others. Each caller
// stops waiting when its own context is done.
func (c *Client) Fetch(ctx context.Context, key string) (json.RawMessage, error) {
	if c.fetch == nil {
		return nil, ErrNoFetcher
	}

	if data, ok := c.lookup(key); ok {
		metrics.RecordCacheHit()
		return data, nil
	}
	metrics.RecordCacheMiss()

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.load(flightCtx, key)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordCacheCoalesced()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.(json.RawMessage)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load runs the fetcher and stores its result unless the cache was
// invalidated meanwhile.
func (c *Client) load(ctx context.Context, key string) (json.RawMessage, error) {
	c.mu.RLock()
	epoch, gen := c.epoch, c.gens[key]
	c.mu.RUnlock()

	start := c.now()
	data, err := c.fetch(ctx, key)
	if err != nil {
		c.logger.Debug(ctx, "query fetch failed",
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, err
	}

	c.mu.Lock()
	if c.epoch == epoch && c.gens[key] == gen {
		c.entries[key] = entry{data: clone(data), fetchedAt: c.now()}
	}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.UpdateCacheEntries(n)

	c.logger.Debug(ctx, "query fetched",
		logger.String("key", key),
		logger.Duration("took", c.now().Sub(start)),
		logger.Bool("null", isNull(data)),
	)
	return data, nil
}

func (c *Client) lookup(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.staleTime > 0 && c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return clone(e.data), true
}

// Invalidate drops key. It reports whether an entry was present.
func (c *Client) Invalidate(ctx context.Context, key string) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.gens[key]++
	n := len(c.entries)
	c.mu.Unlock()

	c.group.Forget(key)
	if ok {
		metrics.RecordCacheInvalidations(1)
	}
	metrics.UpdateCacheEntries(n)

	c.logger.Debug(ctx, "query invalidated",
		logger.String("key", key),
		logger.Bool("present", ok),
	)
	return ok
}

// InvalidateAll drops every entry and returns how many there were.
func (c *Client) InvalidateAll(ctx context.Context) int {
	c.mu.Lock()
	n := len(c.entries)
	keys := make([]string, 0, n)
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.entries = make(map[string]entry)
	c.gens = make(map[string]uint64)
	c.epoch++
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k)
	}
	metrics.RecordCacheInvalidations(n)
	metrics.UpdateCacheEntries(0)

	c.logger.Debug(ctx, "query cache cleared", logger.Int("entries", n))
	return n
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get fetches key and decodes it into T. A null result yields nil.
func Get[T any](ctx context.Context, c *Client, key string) (*T, error) {
	data, err := c.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, key, err)
	}
	return &v, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func clone(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	return bytes.Clone(data)
}
