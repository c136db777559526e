package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
)

// UserCacheRepository provides cached user records using Redis
type UserCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached users
}

// NewUserCacheRepository creates a new repository instance with the given TTL
func NewUserCacheRepository(client *redis.Client, expiration time.Duration) *UserCacheRepository {
	return &UserCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get fetches a cached user. It returns models.ErrCacheMiss when the key is absent.
func (r *UserCacheRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	key := userKey(id)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Infow("cache get",
			"key", key,
			"result", nil,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrCacheMiss
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(val, &user); err != nil {
		logger.Log.Infow("cache decode",
			"key", key,
			"value", string(val),
			"result", nil,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow("cache get",
		"key", key,
		"result", user.ID,
		"error", nil,
	)

	return &user, nil
}

// Set caches a user with expiration
func (r *UserCacheRepository) Set(ctx context.Context, user *models.User) error {
	key := userKey(user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow("cache set",
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}

// SetIfAbsent caches a user only when no entry exists yet. It reports whether
// the value was stored. Read paths use it so a slow reader never replaces a
// record written by a later mutation.
func (r *UserCacheRepository) SetIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	key := userKey(user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return false, err
	}
	stored, err := r.client.SetNX(ctx, key, data, r.exp).Result()

	logger.Log.Infow("cache setnx",
		"key", key,
		"result", stored,
		"error", err,
	)

	return stored, err
}

// Delete drops a cached user
func (r *UserCacheRepository) Delete(ctx context.Context, id int64) error {
	key := userKey(id)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow("cache delete",
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}

// Ping checks the Redis connection
func (r *UserCacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
