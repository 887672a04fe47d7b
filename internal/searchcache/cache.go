// Package searchcache memoizes search results per normalized query.
package searchcache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/songslide/songslide/internal/metrics"
	"github.com/songslide/songslide/internal/search"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultTTL        = 20 * time.Second
	DefaultStaleAfter = 120 * time.Second
	DefaultMaxEntries = 120
)

type entry struct {
	result    *search.Result
	fetchedAt time.Time
}

// Cache wraps a search.Searcher. Entries are fresh for the TTL; after that
// they are refreshed on the next lookup but still served if the refresh
// fails, until they are purged at the stale age. Concurrent misses for one
// key share a single underlying search. Returned results are shared and must
// not be modified.
type Cache struct {
	next       search.Searcher
	ttl        time.Duration
	staleAfter time.Duration
	maxEntries int
	now        func() time.Time

	mu    sync.Mutex
	items map[string]entry
	// gen counts invalidations. A search started under an older generation
	// does not store its result.
	gen   uint64
	group singleflight.Group
}

var _ search.Searcher = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

func WithTTL(d time.Duration) Option        { return func(c *Cache) { c.ttl = d } }
func WithStaleAfter(d time.Duration) Option { return func(c *Cache) { c.staleAfter = d } }
func WithMaxEntries(n int) Option           { return func(c *Cache) { c.maxEntries = n } }
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// New wraps next.
func New(next search.Searcher, opts ...Option) *Cache {
	c := &Cache{
		next:       next,
		ttl:        DefaultTTL,
		staleAfter: DefaultStaleAfter,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		items:      make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key is the cache key for a query: the suggestion flag, then the trimmed,
// NFC-normalized, lower-cased query.
func Key(query string, includeSuggestions bool) string {
	flag := "0:"
	if includeSuggestions {
		flag = "1:"
	}
	return flag + strings.ToLower(norm.NFC.String(strings.TrimSpace(query)))
}

// Search returns a cached result when fresh, otherwise runs the wrapped search.
func (c *Cache) Search(ctx context.Context, query string, includeSuggestions bool) (*search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return c.next.Search(ctx, query, includeSuggestions)
	}
	key := Key(query, includeSuggestions)

	c.mu.Lock()
	now := c.now()
	c.purgeLocked(now)
	cached, ok := c.items[key]
	gen := c.gen
	c.mu.Unlock()

	if ok && now.Sub(cached.fetchedAt) < c.ttl {
		metrics.IncCache(metrics.CacheHit)
		return cached.result, nil
	}

	res, err := c.fetch(ctx, gen, key, query, includeSuggestions)
	if err != nil {
		if ok && ctx.Err() == nil {
			metrics.IncCache(metrics.CacheStale)
			return cached.result, nil
		}
		return nil, err
	}
	metrics.IncCache(metrics.CacheMiss)
	return res, nil
}

func (c *Cache) fetch(ctx context.Context, gen uint64, key, query string, includeSuggestions bool) (*search.Result, error) {
	// Searches started after an Invalidate never join one started before it.
	flight := strconv.FormatUint(gen, 10) + "/" + key
	ch := c.group.DoChan(flight, func() (any, error) {
		// Shared by every caller waiting on key, so not bound to this one.
		res, err := c.next.Search(context.WithoutCancel(ctx), query, includeSuggestions)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.items[key] = entry{result: res, fetchedAt: c.now()}
			c.purgeLocked(c.now())
		}
		c.mu.Unlock()
		return res, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*search.Result), nil
	}
}

// purgeLocked drops entries past the stale age, then the oldest entries
// beyond maxEntries.
func (c *Cache) purgeLocked(now time.Time) {
	for k, e := range c.items {
		if now.Sub(e.fetchedAt) >= c.staleAfter {
			delete(c.items, k)
		}
	}
	for c.maxEntries > 0 && len(c.items) > c.maxEntries {
		var (
			oldestKey string
			oldest    time.Time
			first     = true
		)
		for k, e := range c.items {
			if first || e.fetchedAt.Before(oldest) || (e.fetchedAt.Equal(oldest) && k < oldestKey) {
				oldestKey, oldest, first = k, e.fetchedAt, false
			}
		}
		delete(c.items, oldestKey)
	}
}

// Invalidate drops every entry, e.g. after the weights change. Searches
// already running when it is called are returned to their callers but not
// cached.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.gen++
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
