// Package cache кеш списка категорий в Redis/Valkey.
// Ошибки кеша только логируются: операция всегда может уйти в хранилище.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CategoriesKey = "pluto:categories"
	DefaultTTL    = 10 * time.Minute
)

// Connect создаёт клиент и проверяет соединение ping
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Cache: Подключение к Redis установлено", zap.String("addr", addr))
	return client, nil
}

type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

// Get промах при отсутствии ключа, ошибке Redis или битом JSON
func (c *CategoryCache) Get(ctx context.Context) ([]*category.Category, bool) {
	data, err := c.client.Get(ctx, CategoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Warn("Cache: Ошибка чтения", zap.Error(err))
		return nil, false
	}

	var list []*category.Category
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warn("Cache: Не удалось разобрать список категорий", zap.Error(err))
		return nil, false
	}
	logger.Debug("Cache: Попадание", zap.Int("categories", len(list)))
	return list, true
}

func (c *CategoryCache) Set(ctx context.Context, list []*category.Category) {
	data, err := json.Marshal(list)
	if err != nil {
		logger.Warn("Cache: Не удалось сериализовать категории", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, CategoriesKey, data, c.ttl).Err(); err != nil {
		logger.Warn("Cache: Ошибка записи", zap.Error(err))
	}
}

func (c *CategoryCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, CategoriesKey).Err(); err != nil {
		logger.Warn("Cache: Ошибка инвалидации", zap.Error(err))
	}
}
