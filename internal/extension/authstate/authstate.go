// Package authstate mirrors the durable auth token into an in-memory cache
// for synchronous reads. The durable store is the source of truth and can
// change from other execution contexts, so the cache is refreshed on demand
// and kept current through the store's change subscription.
package authstate

import (
	"context"
	"sync"

	"sentiment-scoop/internal/extension/page"
)

// StorageKey is the durable store entry holding the credential token.
const StorageKey = "authToken"

type Cache struct {
	store page.KV

	mu    sync.RWMutex
	token string
}

func New(store page.KV) *Cache {
	return &Cache{store: store}
}

// Get returns the cached token synchronously; "" means unauthenticated.
// The value may be stale by at most one refresh cycle.
func (c *Cache) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Refresh re-reads the durable store into the cache. Safe to call
// concurrently; last write wins since the store is the source of truth.
func (c *Cache) Refresh(ctx context.Context) error {
	token, ok, err := c.store.Get(ctx, StorageKey)
	if err != nil {
		return err
	}
	if !ok {
		token = ""
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// OnChange registers a handler invoked with the new token whenever the
// durable entry changes, including changes made by other contexts. The cache
// is updated before the handler runs.
func (c *Cache) OnChange(handler func(token string)) (cancel func()) {
	return c.store.Watch(func(key, value string) {
		if key != StorageKey {
			return
		}
		c.mu.Lock()
		c.token = value
		c.mu.Unlock()
		handler(value)
	})
}
