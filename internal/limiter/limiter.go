// Package limiter throttles login attempts per (email, ip) pair.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login attempt is currently permitted.
	Allow(ctx context.Context, email, ip string) (bool, error)
	// Success resets the failure counter after a successful login.
	Success(ctx context.Context, email, ip string) error
	// Failure records a failed attempt.
	Failure(ctx context.Context, email, ip string) error
}

// counterStore is the slice of redis the limiter uses; *redis.Client
// satisfies it and tests supply a fake.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLimiter counts failures in a fixed window. Limiter state is
// advisory: a redis outage must never lock everybody out, so read
// errors fail open.
type RedisLimiter struct {
	store       counterStore
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	return newRedisLimiter(client, maxAttempts, window)
}

func newRedisLimiter(store counterStore, maxAttempts int, window time.Duration) *RedisLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

func key(email, ip string) string {
	return fmt.Sprintf("login_fail:%s:%s", email, ip)
}

func (l *RedisLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	n, err := l.store.Get(ctx, key(email, ip)).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return true, err
	}
	return n < l.maxAttempts, nil
}

func (l *RedisLimiter) Success(ctx context.Context, email, ip string) error {
	return l.store.Del(ctx, key(email, ip)).Err()
}

func (l *RedisLimiter) Failure(ctx context.Context, email, ip string) error {
	k := key(email, ip)
	n, err := l.store.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		// First failure opens the window.
		return l.store.Expire(ctx, k, l.window).Err()
	}
	return nil
}
