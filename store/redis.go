package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/isdmx/codescore/scoring"
)

// RedisConfig holds the configuration for the Redis store.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	TTL          time.Duration
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		KeyPrefix:    "evaluation:",
		TTL:          time.Hour,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	}
}

// RedisStore implements Store on top of go-redis with a per-key TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStoreWithConfig connects to Redis and verifies the connection.
func NewRedisStoreWithConfig(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("addr cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStore(client, config.KeyPrefix, config.TTL), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Save(ctx context.Context, id string, report scoring.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	stored, err := r.client.SetNX(ctx, r.key(id), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store evaluation %s: %w", id, err)
	}
	if !stored {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (scoring.Report, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return scoring.Report{}, ErrNotFound
	}
	if err != nil {
		return scoring.Report{}, fmt.Errorf("failed to load evaluation %s: %w", id, err)
	}

	var report scoring.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return scoring.Report{}, fmt.Errorf("failed to decode evaluation %s: %w", id, err)
	}
	return report, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
