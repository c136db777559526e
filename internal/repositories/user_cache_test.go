package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestUserCacheRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	assert.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	assert.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	repo := NewUserCacheRepository(rdb, 2*time.Second)
	assert.NoError(t, repo.Ping(ctx))

	user := &models.User{
		ID:        7,
		Username:  "alice",
		Email:     "alice@example.com",
		UserData:  models.UserData(`{"plan":"pro","tags":["a","b"]}`),
		Status:    models.UserStatusActive,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("Set and Get user", func(t *testing.T) {
		assert.NoError(t, repo.Set(ctx, user))

		got, err := repo.Get(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, string(user.UserData), string(got.UserData))
		assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Get missing key returns cache miss", func(t *testing.T) {
		_, err := repo.Get(ctx, 9999)
		assert.ErrorIs(t, err, models.ErrCacheMiss)
	})

	t.Run("SetIfAbsent keeps an existing entry", func(t *testing.T) {
		assert.NoError(t, repo.Delete(ctx, user.ID))

		stored, err := repo.SetIfAbsent(ctx, user)
		assert.NoError(t, err)
		assert.True(t, stored)

		deleted := *user
		deleted.Status = models.UserStatusDeleted
		assert.NoError(t, repo.Set(ctx, &deleted))

		stale := *user
		stored, err = repo.SetIfAbsent(ctx, &stale)
		assert.NoError(t, err)
		assert.False(t, stored)

		got, err := repo.Get(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.UserStatusDeleted, got.Status)
	})

	t.Run("Delete invalidates", func(t *testing.T) {
		assert.NoError(t, repo.Set(ctx, user))
		assert.NoError(t, repo.Delete(ctx, user.ID))

		_, err := repo.Get(ctx, user.ID)
		assert.ErrorIs(t, err, models.ErrCacheMiss)
	})

	t.Run("Cached value expires", func(t *testing.T) {
		assert.NoError(t, repo.Set(ctx, user))

		// Wait for expiration (2s)
		time.Sleep(3 * time.Second)

		_, err := repo.Get(ctx, user.ID)
		assert.ErrorIs(t, err, models.ErrCacheMiss)
	})
}
