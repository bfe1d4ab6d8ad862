package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes documents by exact URI. Concurrent requests for the same
// URI share one underlying fetch. Failures are not cached.
type Cache struct {
	next  Fetcher
	docs  sync.Map
	group singleflight.Group
}

func NewCache(next Fetcher) *Cache {
	return &Cache{next: next}
}

func (c *Cache) Fetch(ctx context.Context, uri string) (any, error) {
	if doc, ok := c.docs.Load(uri); ok {
		return doc, nil
	}
	doc, err, _ := c.group.Do(uri, func() (any, error) {
		if doc, ok := c.docs.Load(uri); ok {
			return doc, nil
		}
		doc, err := c.next.Fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		c.docs.Store(uri, doc)
		return doc, nil
	})
	return doc, err
}

// Forget drops a cached document.
func (c *Cache) Forget(uri string) {
	c.docs.Delete(uri)
}
