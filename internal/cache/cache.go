// Package cache puts Redis in front of the focus and mode repositories.
// A Redis failure never fails a request; the repository is consulted instead.
//
// Cached values live under a key carrying the user's write generation.
// Every write through the cache bumps the generation, so a fill that loaded
// its value before the write lands on a key no later reader looks at.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "nuka:memory:"

// Connect parses redisURL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func focusKey(userID string) string { return keyPrefix + "focus:" + userID }
func modeKey(userID string) string  { return keyPrefix + "mode:" + userID }

// genKey holds the write generation of base. It has no TTL.
func genKey(base string) string { return base + ":gen" }

func versioned(base string, gen int64) string { return fmt.Sprintf("%s:v%d", base, gen) }

// currentKey returns the key the value of base is cached under right now.
// A missing counter is generation 0.
func currentKey(ctx context.Context, rdb *redis.Client, base string) (string, error) {
	gen, err := rdb.Get(ctx, genKey(base)).Int64()
	if errors.Is(err, redis.Nil) {
		return versioned(base, 0), nil
	}
	if err != nil {
		return "", err
	}
	return versioned(base, gen), nil
}

// bump moves base to a new generation and drops the entry that was current.
func bump(ctx context.Context, rdb *redis.Client, base string) error {
	gen, err := rdb.Incr(ctx, genKey(base)).Result()
	if err != nil {
		return err
	}
	return rdb.Del(ctx, versioned(base, gen-1)).Err()
}
