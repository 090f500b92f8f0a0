package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// DefaultModeTTL is how long a user's mode stays cached.
const DefaultModeTTL = time.Hour

// ModeCache is a read-through cache for the per-user memory mode.
type ModeCache struct {
	next   memory.ModeRepository
	rdb    *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

var _ memory.ModeRepository = (*ModeCache)(nil)

// NewModeCache wraps next.
func NewModeCache(next memory.ModeRepository, rdb *redis.Client, logger *zap.Logger) *ModeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModeCache{next: next, rdb: rdb, logger: logger, ttl: DefaultModeTTL}
}

// GetMemoryMode returns the cached mode, loading it on a miss.
func (c *ModeCache) GetMemoryMode(ctx context.Context, userID string) (memory.Mode, error) {
	key, err := currentKey(ctx, c.rdb, modeKey(userID))
	if err != nil {
		c.logger.Warn("mode cache read failed", zap.String("user", userID), zap.Error(err))
		return c.next.GetMemoryMode(ctx, userID)
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if mode, perr := memory.ParseMode(raw); perr == nil {
			return mode, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("mode cache read failed", zap.String("user", userID), zap.Error(err))
		return c.next.GetMemoryMode(ctx, userID)
	}

	mode, err := c.next.GetMemoryMode(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, string(mode), c.ttl).Err(); err != nil {
		c.logger.Warn("mode cache write failed", zap.String("user", userID), zap.Error(err))
	}
	return mode, nil
}

// SetMemoryMode writes through and moves the user to a new cache generation.
func (c *ModeCache) SetMemoryMode(ctx context.Context, userID string, mode memory.Mode) error {
	err := c.next.SetMemoryMode(ctx, userID, mode)
	if berr := bump(ctx, c.rdb, modeKey(userID)); berr != nil {
		c.logger.Warn("mode cache invalidation failed", zap.String("user", userID), zap.Error(berr))
	}
	return err
}
