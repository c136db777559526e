package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/sbilibin2017/user-registry/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func TestHealthService_Check(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		storeErr   error
		withCache  bool
		cacheErr   error
		wantStatus string
		wantDB     string
		wantCache  string
	}{
		{
			name:       "all connected",
			withCache:  true,
			wantStatus: models.HealthStatusHealthy,
			wantDB:     models.DependencyConnected,
			wantCache:  models.DependencyConnected,
		},
		{
			name:       "store unreachable",
			storeErr:   errors.New("dial tcp: connection refused"),
			wantStatus: models.HealthStatusDegraded,
			wantDB:     models.DependencyUnreachable,
		},
		{
			name:       "cache down does not degrade",
			withCache:  true,
			cacheErr:   errors.New("redis: connection refused"),
			wantStatus: models.HealthStatusHealthy,
			wantDB:     models.DependencyConnected,
			wantCache:  models.DependencyUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStorePinger(ctrl)
			version := "PostgreSQL 16.2"
			if tt.storeErr != nil {
				version = ""
			}
			store.EXPECT().Ping(gomock.Any()).Return(version, tt.storeErr)

			var svc *HealthService
			if tt.withCache {
				cache := NewMockCachePinger(ctrl)
				cache.EXPECT().Ping(gomock.Any()).Return(tt.cacheErr)
				svc = NewHealthService(store, cache, "postgres", time.Second)
			} else {
				svc = NewHealthService(store, nil, "postgres", time.Second)
			}
			svc.now = func() time.Time { return fixed }

			health := svc.Check(ctx)

			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, tt.wantDB, health.Database.Status)
			assert.Equal(t, "postgres", health.Database.Provider)
			assert.Equal(t, fixed, health.Timestamp)

			if tt.storeErr != nil {
				assert.Equal(t, "unknown", health.Database.Version)
				assert.Equal(t, tt.storeErr.Error(), health.Database.Error)
			} else {
				assert.Equal(t, version, health.Database.Version)
				assert.Empty(t, health.Database.Error)
			}

			if tt.withCache {
				if assert.NotNil(t, health.Cache) {
					assert.Equal(t, tt.wantCache, health.Cache.Status)
				}
			} else {
				assert.Nil(t, health.Cache)
			}
		})
	}
}

func TestHealthService_Check_ProbeTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStorePinger(ctrl)
	store.EXPECT().Ping(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	svc := NewHealthService(store, nil, "postgres", 20*time.Millisecond)
	health := svc.Check(context.Background())

	assert.False(t, health.Healthy())
	assert.Equal(t, models.DependencyUnreachable, health.Database.Status)
	assert.Contains(t, health.Database.Error, context.DeadlineExceeded.Error())
}

func TestHealthService_Check_MemoryStore(t *testing.T) {
	repo := repositories.NewUserMemoryRepository()
	svc := NewHealthService(repo, nil, "memory", 0)

	health := svc.Check(context.Background())

	assert.True(t, health.Healthy())
	assert.Equal(t, repositories.MemoryVersion, health.Database.Version)
	assert.Equal(t, DefaultHealthTimeout, svc.timeout)
}
