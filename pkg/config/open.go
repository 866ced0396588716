package config

import (
	"context"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/store"
)

// OpenCache returns the configured build cache: Redis when an address is
// set, files otherwise.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	if c.Cache.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   AppName + ":",
		})
	}
	dir, err := c.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// OpenStore returns the configured drawing store.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	if c.Store.Backend == BackendMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      c.Store.MongoURI,
			Database: c.Store.Database,
		})
	}
	dir, err := c.StoreDir()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(dir)
}
