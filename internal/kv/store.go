// Package kv wraps the Redis client with the small set of primitives the
// ticketing core needs: atomic compare-and-delete and simple GET/SET with
// TTL. It keeps Lua script handles pre-compiled the way
// the rate limiter and cache middleware already do.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a thin, typed front for a *redis.Client used by the lock
// manager. The admission queue engine uses the *redis.Client directly.
type Store struct {
	Client *redis.Client
}

func New(client *redis.Client) *Store { return &Store{Client: client} }

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// SetNX sets key to value with the given TTL only if it does not already
// exist, returning whether the set happened.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the current value of key, redis.Nil if absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.Client.Get(ctx, key).Result()
}

// CompareAndDelete deletes key only if its current value equals expect,
// returning whether the delete happened. It runs as a single Lua script so
// the read and the delete are atomic against a concurrent re-lock.
func (s *Store) CompareAndDelete(ctx context.Context, key, expect string) (bool, error) {
	res, err := releaseScript.Run(ctx, s.Client, []string{key}, expect).Result()
	if err != nil {
		return false, err
	}
	n, _ := res.(int64)
	return n == 1, nil
}

// Expire resets the TTL on an existing key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.Client.Expire(ctx, key, ttl).Err()
}

// Delete unconditionally removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

// IsNil reports whether err is redis.Nil, the sentinel for a missing key.
func IsNil(err error) bool { return err == redis.Nil }
