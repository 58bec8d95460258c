package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stockflows/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

const defaultStockTTL = 5 * time.Minute

// StockCache caches per-branch stock level listings in Redis. Entries are
// invalidated whenever a movement touches the branch, so a stale read can
// only survive until the next write or the TTL.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// StockCacheOption configures a StockCache
type StockCacheOption func(*StockCache)

// WithStockTTL overrides the default entry TTL
func WithStockTTL(ttl time.Duration) StockCacheOption {
	return func(c *StockCache) {
		c.ttl = ttl
	}
}

// WithStockLogger sets the logger
func WithStockLogger(logger *zap.Logger) StockCacheOption {
	return func(c *StockCache) {
		c.logger = logger
	}
}

// NewStockCache creates a cache on an existing Redis client.
// The caller retains ownership of the client.
func NewStockCache(client *redis.Client, opts ...StockCacheOption) *StockCache {
	c := &StockCache{
		client: client,
		ttl:    defaultStockTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StockCache) branchKey(orgID, branchID uuid.UUID) string {
	return fmt.Sprintf("stock:levels:%s:%s", orgID, branchID)
}

// GetBranchLevels returns the cached levels for a branch, nil on a miss.
// Cache errors degrade to a miss so reads fall through to the database.
func (c *StockCache) GetBranchLevels(ctx context.Context, orgID, branchID uuid.UUID) ([]inventory.StockLevel, error) {
	key := c.branchKey(orgID, branchID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("stock cache read failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}

	var levels []inventory.StockLevel
	if err := json.Unmarshal(data, &levels); err != nil {
		c.logger.Warn("stock cache entry corrupted, dropping", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, nil
	}
	return levels, nil
}

// SetBranchLevels stores the levels for a branch
func (c *StockCache) SetBranchLevels(ctx context.Context, orgID, branchID uuid.UUID, levels []inventory.StockLevel) error {
	data, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("failed to marshal stock levels: %w", err)
	}
	return c.client.Set(ctx, c.branchKey(orgID, branchID), data, c.ttl).Err()
}

// InvalidateBranch drops the cached levels for a branch
func (c *StockCache) InvalidateBranch(ctx context.Context, orgID, branchID uuid.UUID) error {
	return c.client.Del(ctx, c.branchKey(orgID, branchID)).Err()
}
