package ratelimit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter is the multi-instance variant of the fixed-window limiter.
// INCR gives atomic counting across processes; the key TTL is the window.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	windowSize  time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter sharing counters across
// all instances pointed at the same server.
func NewRedisLimiter(client *redis.Client, maxRequests int, windowSize time.Duration) *RedisLimiter {
	if maxRequests <= 0 {
		maxRequests = 100
	}
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	return &RedisLimiter{client: client, maxRequests: maxRequests, windowSize: windowSize}
}

func (l *RedisLimiter) Allow(key string) bool {
	ctx := context.Background()
	redisKey := redisKeyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: a cache outage must not block payment traffic.
		log.Errorf("[RateLimit] INCR failed for %s: %v", key, err)
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.windowSize).Err(); err != nil {
			log.Errorf("[RateLimit] EXPIRE failed for %s: %v", key, err)
		}
	}
	if count > int64(l.maxRequests) {
		return false
	}
	return true
}

func (l *RedisLimiter) Remaining(key string) int {
	ctx := context.Background()
	count, err := l.client.Get(ctx, redisKeyPrefix+key).Int()
	if err != nil {
		if err != redis.Nil {
			log.Errorf("[RateLimit] GET failed for %s: %v", key, err)
		}
		return l.maxRequests
	}
	remaining := l.maxRequests - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *RedisLimiter) Reset(key string) {
	if err := l.client.Del(context.Background(), redisKeyPrefix+key).Err(); err != nil {
		log.Errorf("[RateLimit] DEL failed for %s: %v", key, err)
	}
}
