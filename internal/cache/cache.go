package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// Redis key prefixes
const (
	categoriesKey   = "trivia:categories"
	rateLimitPrefix = "trivia:ratelimit:"
)

// Store keeps the category mapping and rate limit counters in Redis
type Store struct {
	redis         *redis.Client
	categoriesTTL time.Duration
}

// NewStore creates a new Redis backed store
func NewStore(client *redis.Client, categoriesTTL time.Duration) *Store {
	return &Store{redis: client, categoriesTTL: categoriesTTL}
}

// Categories returns the cached category mapping. The boolean is false on a miss.
func (s *Store) Categories(ctx context.Context) (domain.CategoryMap, bool, error) {
	data, err := s.redis.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get categories: %w", err)
	}

	var categories domain.CategoryMap
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	return categories, true, nil
}

// StoreCategories caches the category mapping
func (s *Store) StoreCategories(ctx context.Context, categories domain.CategoryMap) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := s.redis.Set(ctx, categoriesKey, data, s.categoriesTTL).Err(); err != nil {
		return fmt.Errorf("failed to store categories: %w", err)
	}
	return nil
}

// InvalidateCategories drops the cached category mapping
func (s *Store) InvalidateCategories(ctx context.Context) error {
	if err := s.redis.Del(ctx, categoriesKey).Err(); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}
	return nil
}

// RateLimit counts a request from client in the current window and reports whether
// the limit has been exceeded.
func (s *Store) RateLimit(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + client
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := s.redis.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > int64(limit), nil
}
