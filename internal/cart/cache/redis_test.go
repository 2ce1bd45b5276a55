package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return cache, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cart := &domain.Cart{
		UserID: "user123",
		Items: []domain.CartItem{
			{Name: "Generator", Quantity: 1},
			{Name: "Jacket", Quantity: 3},
		},
	}
	raw, err := json.Marshal(cart)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey("user123"), string(raw)))

	result, err := cache.Get(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", result.UserID)
	assert.Equal(t, map[string]int{"Generator": 1, "Jacket": 3}, result.Quantities())
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cacheKey("user123"), "{not json"))

	_, err := cache.Get(context.Background(), "user123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestGeneration_StartsAtZero(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	gen, err := cache.Generation(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)
}

func TestSet_StoresWithJitteredTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cart := &domain.Cart{UserID: "user123", Items: []domain.CartItem{{Name: "T-Shirt", Quantity: 2}}}
	require.NoError(t, cache.Set(context.Background(), "user123", 0, cart))

	assert.True(t, mr.Exists(cacheKey("user123")))
	ttl := mr.TTL(cacheKey("user123"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)

	got, err := cache.Get(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantities()["T-Shirt"])
}

func TestSet_ExpiresAfterTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), "user123", 0, domain.New("user123")))
	mr.FastForward(20 * time.Minute)

	_, err := cache.Get(context.Background(), "user123")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSet_DroppedAfterDelete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	gen, err := cache.Generation(ctx, "user123")
	require.NoError(t, err)

	require.NoError(t, cache.Delete(ctx, "user123"))

	full := &domain.Cart{UserID: "user123", Items: []domain.CartItem{{Name: "Jacket", Quantity: 1}}}
	err = cache.Set(ctx, "user123", gen, full)
	assert.ErrorIs(t, err, ErrStaleEntry)
	assert.False(t, mr.Exists(cacheKey("user123")))

	gen, err = cache.Generation(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	require.NoError(t, cache.Set(ctx, "user123", gen, domain.New("user123")))
}

func TestDelete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), "user123", 0, domain.New("user123")))
	require.NoError(t, cache.Delete(context.Background(), "user123"))

	assert.False(t, mr.Exists(cacheKey("user123")))
	assert.NoError(t, cache.Delete(context.Background(), "user123"))

	assert.Greater(t, mr.TTL(generationKey("user123")), 23*time.Hour)
}
