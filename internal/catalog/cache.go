package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/tradepost/backend/internal/models"
)

// Store is the product persistence surface the cache decorates.
type Store interface {
	Create(ctx context.Context, product models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

type cacheEntry struct {
	product models.Product
	expires time.Time
}

// CachingStore wraps another Store with a TTL-based in-memory cache on reads.
// Listings are immutable after creation, so a stale window only delays 404s
// for deleted products.
type CachingStore struct {
	base Store
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingStore returns a Store that caches lookups for the provided TTL.
func NewCachingStore(base Store, ttl time.Duration) *CachingStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingStore{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Create delegates to the underlying store and primes the cache.
func (c *CachingStore) Create(ctx context.Context, product models.Product) error {
	if err := c.base.Create(ctx, product); err != nil {
		return err
	}

	c.mu.Lock()
	c.items[product.ID] = cacheEntry{product: product, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return nil
}

// Delete delegates to the underlying store and evicts the cached entry.
func (c *CachingStore) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()

	return c.base.Delete(ctx, id)
}

// FindByID returns a cached product when available, otherwise it delegates to
// the underlying store and stores the result.
func (c *CachingStore) FindByID(ctx context.Context, id string) (models.Product, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.product, nil
	}

	product, err := c.base.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry{product: product, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return product, nil
}
