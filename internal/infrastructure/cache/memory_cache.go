package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
)

// MemoryCache keeps documents in process memory
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a cache whose entries live for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, domainRepo.ErrCacheMiss
	}
	return v.([]byte), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.store.SetDefault(key, value)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}
