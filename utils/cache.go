// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"travelagent/config"
)

// ThreadCacheClient is the Redis client backing the optional
// Redis-based thread store.
var ThreadCacheClient *redis.Client

// InitThreadCache initializes the Redis client for thread storage.
func InitThreadCache() {
	ThreadCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisThreadDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ThreadCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Thread Cache): %v", err)
	}
}

// GetThreadCacheClient returns the Redis client for thread storage.
func GetThreadCacheClient() *redis.Client {
	if ThreadCacheClient == nil {
		InitThreadCache()
	}
	return ThreadCacheClient
}
