package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"minesweeper/internal/config"
	"minesweeper/pkg/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is not cached
var ErrCacheMiss = errors.New("cache miss")

// Cache interface defines caching operations
type Cache interface {
	// Leaderboard caching
	SetLeaderboard(ctx context.Context, difficulty models.Difficulty, entries []models.LeaderboardEntry, expiration time.Duration) error
	GetLeaderboard(ctx context.Context, difficulty models.Difficulty) ([]models.LeaderboardEntry, error)
	InvalidateLeaderboard(ctx context.Context, difficulty models.Difficulty) error

	// Generic operations
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Close() error
}

// RedisCache implements caching using Redis
type RedisCache struct {
	client *redis.Client
}

// Ensure RedisCache implements Cache interface
var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("invalid Redis configuration: %w", err)
	}

	// Create Redis client
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Successfully connected to Redis")

	return NewRedisCacheFromClient(rdb), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Set stores a value in Redis
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from Redis
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get value: %w", err)
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Exists checks if a key exists in Redis
func (r *RedisCache) Exists(ctx context.Context, key string) bool {
	result, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return result > 0
}

// SetLeaderboard caches leaderboard entries
func (r *RedisCache) SetLeaderboard(ctx context.Context, difficulty models.Difficulty, entries []models.LeaderboardEntry, expiration time.Duration) error {
	return r.Set(ctx, leaderboardKey(difficulty), entries, expiration)
}

// GetLeaderboard retrieves cached leaderboard entries
func (r *RedisCache) GetLeaderboard(ctx context.Context, difficulty models.Difficulty) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := r.Get(ctx, leaderboardKey(difficulty), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// InvalidateLeaderboard removes cached leaderboard
func (r *RedisCache) InvalidateLeaderboard(ctx context.Context, difficulty models.Difficulty) error {
	return r.Delete(ctx, leaderboardKey(difficulty))
}

func leaderboardKey(difficulty models.Difficulty) string {
	return fmt.Sprintf("leaderboard:%s", string(difficulty))
}
