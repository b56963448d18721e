package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"

	"github.com/mikeydub/go-portfolio/env"
)

func init() {
	env.RegisterValidation("REDIS_URL", "required")
}

// ErrKeyNotFound is returned when a key is absent from the store. Callers that
// treat an absent key as an empty collection must check for it explicitly.
type ErrKeyNotFound struct {
	Key string
}

func (e ErrKeyNotFound) Error() string {
	return fmt.Sprintf("key %s not found", e.Key)
}

const (
	// lockTTL bounds how long a crashed writer can hold a collection lock.
	lockTTL = 10 * time.Second

	lockRetryMin = 32 * time.Millisecond
	lockRetryMax = 2 * time.Second
	lockRetries  = 16
)

// Cache represents an abstraction over a redis client. One Cache is constructed
// at startup and shared by every repository in the process.
type Cache struct {
	client *redis.Client
	locker *redislock.Client
}

// NewCache creates a new redis cache and verifies connectivity. The underlying
// client retries transient failures with bounded exponential backoff.
func NewCache(ctx context.Context) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            env.GetString("REDIS_URL"),
		Password:        env.GetString("REDIS_PASS"),
		MaxRetries:      8,
		MinRetryBackoff: 16 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %s", err)
	}

	return &Cache{client: client, locker: redislock.New(client)}, nil
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// Get gets a value from the redis cache
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrKeyNotFound{Key: key}
		}
		return nil, err
	}
	return bs, nil
}

// Set sets a value in the redis cache
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err()
}

// Delete deletes a value from the redis cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Update runs a read-modify-write cycle against one key while holding a
// per-key lock, so concurrent writers cannot clobber each other's rewrite of
// the value. fn receives nil when the key is absent; the value it returns is
// written back under the same lock. Errors returned by fn propagate unchanged.
func (c *Cache) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	lock, err := c.locker.Obtain(ctx, "lock:"+key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.ExponentialBackoff(lockRetryMin, lockRetryMax), lockRetries),
	})
	if err != nil {
		return fmt.Errorf("could not obtain lock for %s: %s", key, err)
	}
	defer lock.Release(ctx)

	current, err := c.Get(ctx, key)
	if err != nil {
		if _, ok := err.(ErrKeyNotFound); !ok {
			return err
		}
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, next)
}

// Close closes the underlying redis client
func (c *Cache) Close() error {
	return c.client.Close()
}
