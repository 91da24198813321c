// Package cache provides DocumentCache implementations.
package cache

import (
	"context"
	"fmt"

	"github.com/sangkips/schoolfee-receipts/internal/config"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
)

type nullCache struct{}

// NewNullCache returns a cache that never stores anything
func NewNullCache() domainRepo.DocumentCache {
	return nullCache{}
}

func (nullCache) Get(context.Context, string) ([]byte, error) {
	return nil, domainRepo.ErrCacheMiss
}

func (nullCache) Set(context.Context, string, []byte) error { return nil }

func (nullCache) Delete(context.Context, string) error { return nil }

// NewFromConfig creates the cache named by cfg.Driver: "memory", "redis" or "none"
func NewFromConfig(cfg *config.CacheConfig) (domainRepo.DocumentCache, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryCache(cfg.TTL), nil
	case "redis":
		c, err := NewRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none":
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q (use memory, redis, or none)", cfg.Driver)
	}
}
