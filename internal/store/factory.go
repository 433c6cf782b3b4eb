package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"complib/internal/config"
	"complib/internal/library"
)

// NewStoreFromConfig creates a Store implementation based on the store config type.
func NewStoreFromConfig(cfg config.StoreConfig) (library.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite store requires sqlite_path to be set")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis store requires redis_addr to be set")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client, cfg.RedisPrefix), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3StoreFromConfig(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
