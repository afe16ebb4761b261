package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apavering/user-directory/app/models"
)

// UserCache is a best-effort read cache for user-by-id lookups. Errors are
// surfaced to the caller but safe to ignore: a miss is always recoverable
// from the store.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserCache{rdb: rdb, ttl: ttl}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns the cached user and whether the key was present.
func (c *UserCache) Get(ctx context.Context, id int64) (*models.User, bool, error) {
	raw, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func (c *UserCache) Set(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(user.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after an update or soft delete.
func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, userKey(id)).Err()
}
