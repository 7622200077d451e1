package mw

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "board:resp:"
	redisGenerationKey = "board:resp-generation"
)

// RedisCache is a ResponseCache shared between server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts *redis.Options) (*RedisCache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, prefix: redisKeyPrefix}, nil
}

func (r *RedisCache) Get(key string) (CachedResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return CachedResponse{}, false
	}
	if err != nil {
		log.Printf("Redis cache get %q failed: %v", key, err)
		return CachedResponse{}, false
	}

	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Printf("Redis cache entry %q is corrupt: %v", key, err)
		return CachedResponse{}, false
	}
	return resp, true
}

func (r *RedisCache) Set(key string, resp CachedResponse, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to encode cache entry %q: %v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		log.Printf("Redis cache set %q failed: %v", key, err)
	}
}

// Generation returns the shared flush counter. Zero when it was never bumped.
func (r *RedisCache) Generation() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	gen, err := r.client.Get(ctx, redisGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		log.Printf("Redis cache generation read failed: %v", err)
	}
	return gen
}

// Flush bumps the generation, then deletes every cached response under the prefix.
func (r *RedisCache) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Incr(ctx, redisGenerationKey).Err(); err != nil {
		log.Printf("Redis cache generation bump failed: %v", err)
	}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Redis cache scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Redis cache flush failed: %v", err)
	}
}

// Close releases the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
