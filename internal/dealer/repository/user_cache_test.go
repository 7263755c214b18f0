package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
)

func TestUserCacheRepository_SetAndGet(t *testing.T) {
	ctx := suite.NewAccountContext()
	cache := repository.NewUserCacheRepository(suite.DB)

	userID := uuid.New().String()
	require.NoError(t, cache.Set(ctx, &repository.CachedUser{
		UserID: userID,
		Name:   "Pat Reyes",
		Email:  strPtr("pat@example.com"),
	}))

	got, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pat Reyes", got.Name)

	// Set is an upsert
	require.NoError(t, cache.Set(ctx, &repository.CachedUser{
		UserID: userID,
		Name:   "Pat Reyes-Lee",
	}))
	got, err = cache.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pat Reyes-Lee", got.Name)
	assert.Nil(t, got.Email)
}

func TestUserCacheRepository_GetMissing(t *testing.T) {
	ctx := suite.NewAccountContext()
	cache := repository.NewUserCacheRepository(suite.DB)

	got, err := cache.Get(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCacheRepository_Delete(t *testing.T) {
	ctx := suite.NewAccountContext()
	cache := repository.NewUserCacheRepository(suite.DB)

	userID := uuid.New().String()
	require.NoError(t, cache.Set(ctx, &repository.CachedUser{UserID: userID, Name: "Temp User"}))
	require.NoError(t, cache.Delete(ctx, userID))

	got, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCacheRepository_ScopedToAccount(t *testing.T) {
	ctx := suite.NewAccountContext()
	cache := repository.NewUserCacheRepository(suite.DB)

	userID := uuid.New().String()
	require.NoError(t, cache.Set(ctx, &repository.CachedUser{UserID: userID, Name: "Scoped User"}))

	otherCtx := suite.NewAccountContext()
	got, err := cache.Get(otherCtx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
