package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"plutoTodo/internal/cache"
	"plutoTodo/internal/models/category"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient пропускает тест, если Redis недоступен
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("PLUTO_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := cache.Connect(context.Background(), addr, os.Getenv("PLUTO_TEST_REDIS_PASSWORD"), 15)
	if err != nil {
		t.Skipf("Redis недоступен: %v", err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), cache.CategoriesKey)
		client.Close()
	})
	return client
}

func TestCategoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCategoryCache(testClient(t), time.Minute)
	c.Invalidate(ctx)

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	list := []*category.Category{
		category.Defaults[0].Category(),
		category.Defaults[1].Category(),
	}
	c.Set(ctx, list)

	got, ok := c.Get(ctx)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, list[0].ID, got[0].ID)
	assert.Equal(t, list[1].Name, got[1].Name)
	assert.True(t, list[0].CreatedAt.Equal(got[0].CreatedAt))

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestCategoryCache_CorruptedValueIsMiss(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	c := cache.NewCategoryCache(client, time.Minute)

	require.NoError(t, client.Set(ctx, cache.CategoriesKey, "{not json", time.Minute).Err())
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestCategoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	c := cache.NewCategoryCache(client, 30*time.Second)

	c.Set(ctx, []*category.Category{})
	ttl, err := client.TTL(ctx, cache.CategoriesKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}
