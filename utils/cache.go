package utils

import (
	"context"
	"log"
	"time"

	"serbisyo/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the shared Redis client for webhook dedup keys and other
// short-lived payment state.
var CacheClient *redis.Client

// InitCache initializes the Redis cache client.
func InitCache(cfg *config.Config) {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the shared cache client.
func GetCacheClient() *redis.Client {
	return CacheClient
}
