package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/sbilibin2017/user-registry/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapUserCache mirrors the Redis cache semantics with a map.
type mapUserCache struct {
	mu    sync.Mutex
	users map[int64]models.User
}

func newMapUserCache() *mapUserCache {
	return &mapUserCache{users: map[int64]models.User{}}
}

func (c *mapUserCache) Get(_ context.Context, id int64) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.users[id]
	if !ok {
		return nil, models.ErrCacheMiss
	}
	return &user, nil
}

func (c *mapUserCache) Set(_ context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = *user
	return nil
}

func (c *mapUserCache) SetIfAbsent(_ context.Context, user *models.User) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[user.ID]; ok {
		return false, nil
	}
	c.users[user.ID] = *user
	return true, nil
}

func (c *mapUserCache) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
	return nil
}

// stallingReader holds the next GetByID after the store answered until resumed.
type stallingReader struct {
	*repositories.UserMemoryRepository
	armed   atomic.Bool
	fetched chan struct{}
	resume  chan struct{}
}

func (r *stallingReader) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.UserMemoryRepository.GetByID(ctx, id)
	if r.armed.CompareAndSwap(true, false) {
		close(r.fetched)
		<-r.resume
	}
	return user, err
}

func TestUserService_CacheNotStaleAfterConcurrentMutation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(ctx context.Context, svc *UserService, id int64) error
		wantStatus models.UserStatus
	}{
		{
			name: "delete during read",
			mutate: func(ctx context.Context, svc *UserService, id int64) error {
				_, err := svc.DeleteUser(ctx, id)
				return err
			},
			wantStatus: models.UserStatusDeleted,
		},
		{
			name: "update during read",
			mutate: func(ctx context.Context, svc *UserService, id int64) error {
				_, err := svc.UpdateUser(ctx, id, models.UserUpdate{Status: ptr(models.UserStatusInactive)})
				return err
			},
			wantStatus: models.UserStatusInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := repositories.NewUserMemoryRepository()
			reader := &stallingReader{
				UserMemoryRepository: repo,
				fetched:              make(chan struct{}),
				resume:               make(chan struct{}),
			}
			svc := NewUserService(reader, repo, newMapUserCache(), nil, 0)

			user, err := svc.CreateUser(ctx, models.CreateUserInput{Username: "a", Email: "a@x.com"})
			require.NoError(t, err)

			reader.armed.Store(true)
			done := make(chan error, 1)
			go func() {
				_, err := svc.GetUser(ctx, user.ID)
				done <- err
			}()

			<-reader.fetched
			require.NoError(t, tt.mutate(ctx, svc, user.ID))
			close(reader.resume)
			require.NoError(t, <-done)

			got, err := svc.GetUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestUserService_CacheFilledOnceOnRead(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserMemoryRepository()
	cache := newMapUserCache()
	svc := NewUserService(repo, repo, cache, nil, 0)

	user, err := svc.CreateUser(ctx, models.CreateUserInput{Username: "a", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	cached, err := cache.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, cached.Status)

	_, err = svc.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	cached, err = cache.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusDeleted, cached.Status)
}
