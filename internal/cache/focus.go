package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// noSession marks a cached miss.
const noSession = "none"

// DefaultMissTTL bounds how long "no active session" is cached.
const DefaultMissTTL = 10 * time.Minute

// FocusCache is a read-through cache for the active focus session. Entries
// live until the session's expiry; writes invalidate.
type FocusCache struct {
	next    memory.FocusRepository
	rdb     *redis.Client
	logger  *zap.Logger
	now     func() time.Time
	missTTL time.Duration
}

var _ memory.FocusRepository = (*FocusCache)(nil)

// NewFocusCache wraps next.
func NewFocusCache(next memory.FocusRepository, rdb *redis.Client, logger *zap.Logger) *FocusCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FocusCache{next: next, rdb: rdb, logger: logger, now: time.Now, missTTL: DefaultMissTTL}
}

// ActiveFocusSession returns the cached session, loading it on a miss.
func (c *FocusCache) ActiveFocusSession(ctx context.Context, userID string) (*memory.FocusSession, error) {
	key, err := currentKey(ctx, c.rdb, focusKey(userID))
	if err != nil {
		c.logger.Warn("focus cache read failed", zap.String("user", userID), zap.Error(err))
		return c.next.ActiveFocusSession(ctx, userID)
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && raw == noSession:
		return nil, nil
	case err == nil:
		var s memory.FocusSession
		if jerr := json.Unmarshal([]byte(raw), &s); jerr == nil {
			return &s, nil
		}
		c.logger.Warn("dropping unreadable focus cache entry", zap.String("user", userID))
		c.rdb.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("focus cache read failed", zap.String("user", userID), zap.Error(err))
		return c.next.ActiveFocusSession(ctx, userID)
	}

	s, err := c.next.ActiveFocusSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, userID, key, s)
	return s, nil
}

// fill stores s under key, the key current before s was loaded.
func (c *FocusCache) fill(ctx context.Context, userID, key string, s *memory.FocusSession) {
	value, ttl := noSession, c.missTTL
	if s != nil {
		ttl = s.ExpiresAt.Sub(c.now())
		if ttl <= 0 {
			return
		}
		data, err := json.Marshal(s)
		if err != nil {
			return
		}
		value = string(data)
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("focus cache write failed", zap.String("user", userID), zap.Error(err))
	}
}

// ReplaceFocusSession writes through and moves the user to a new cache
// generation.
func (c *FocusCache) ReplaceFocusSession(ctx context.Context, s *memory.FocusSession) (string, error) {
	id, err := c.next.ReplaceFocusSession(ctx, s)
	c.invalidate(ctx, s.UserID)
	return id, err
}

// DeactivateFocusSession writes through and moves the user to a new cache
// generation.
func (c *FocusCache) DeactivateFocusSession(ctx context.Context, userID string) error {
	err := c.next.DeactivateFocusSession(ctx, userID)
	c.invalidate(ctx, userID)
	return err
}

func (c *FocusCache) invalidate(ctx context.Context, userID string) {
	if err := bump(ctx, c.rdb, focusKey(userID)); err != nil {
		c.logger.Warn("focus cache invalidation failed", zap.String("user", userID), zap.Error(err))
	}
}
