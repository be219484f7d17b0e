// Package store persists scored evaluations for a bounded retention window.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/scoring"
)

var (
	// ErrNotFound is returned when an evaluation is unknown or has expired
	ErrNotFound = errors.New("evaluation not found")

	// ErrExists is returned by Save when a live evaluation already holds the id
	ErrExists = errors.New("evaluation id already in use")
)

// Store keeps evaluation reports keyed by evaluation id
type Store interface {
	// Save stores report under id for the store's retention window. It never
	// overwrites a live entry and returns ErrExists instead.
	Save(ctx context.Context, id string, report scoring.Report) error

	// Load returns the report stored under id, or ErrNotFound
	Load(ctx context.Context, id string) (scoring.Report, error)

	// Close releases the underlying connection
	Close() error
}

// New creates the store backend selected by the configuration
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		redisCfg := DefaultRedisConfig()
		redisCfg.Addr = cfg.Store.RedisAddr
		redisCfg.Password = cfg.Store.RedisPassword
		redisCfg.DB = cfg.Store.RedisDB
		redisCfg.KeyPrefix = cfg.Store.KeyPrefix
		redisCfg.TTL = cfg.GetStoreTTL()

		s, err := NewRedisStoreWithConfig(redisCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("evaluation store ready",
			zap.String("backend", cfg.Store.Backend),
			zap.String("addr", cfg.Store.RedisAddr),
			zap.Duration("ttl", redisCfg.TTL))
		return s, nil
	case config.StoreBackendMemory:
		logger.Info("evaluation store ready",
			zap.String("backend", cfg.Store.Backend),
			zap.Int("max_entries", cfg.Store.MemoryMaxEntries),
			zap.Duration("ttl", cfg.GetStoreTTL()))
		return NewMemoryStore(cfg.Store.MemoryMaxEntries, cfg.GetStoreTTL()), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
