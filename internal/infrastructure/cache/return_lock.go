package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/infrastructure/config"
)

// ErrLockNotObtained is returned when another request holds the lock past
// the configured retry budget
var ErrLockNotObtained = shared.NewDomainError("CONCURRENCY_CONFLICT",
	"Another return is being created for this order, try again")

// ReturnLocker serializes return creation per source document across
// instances, so concurrent requests cannot both pass the returnable-quantity
// check.
type ReturnLocker struct {
	locker *redislock.Client
	cfg    config.LockConfig
}

// NewReturnLocker creates a locker on an existing Redis client
func NewReturnLocker(client *redis.Client, cfg config.LockConfig) *ReturnLocker {
	return &ReturnLocker{
		locker: redislock.New(client),
		cfg:    cfg,
	}
}

// AcquireSource obtains the per-source lock, retrying on the configured
// interval. Returns ErrLockNotObtained when the retry budget is exhausted.
// The returned func releases the lock.
func (l *ReturnLocker) AcquireSource(ctx context.Context, orgID, sourceID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("lock:return:%s:%s", orgID, sourceID)

	lock, err := l.locker.Obtain(ctx, key, l.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(
			redislock.LinearBackoff(l.cfg.RetryInterval), l.cfg.MaxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain return lock: %w", err)
	}

	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}
