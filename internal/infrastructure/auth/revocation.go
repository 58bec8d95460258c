package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates session tokens before their natural expiry,
// used on logout and forced sign-out.
type TokenRevoker interface {
	// Revoke marks a token's JTI as revoked for the remaining token lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a token's JTI has been revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser invalidates every session of a user; tokens issued before
	// the call are rejected
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at the given time
	// predates a user-wide revocation
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// RedisTokenRevoker implements TokenRevoker on Redis
type RedisTokenRevoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenRevoker creates a revoker backed by an existing Redis client
func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{
		client:    client,
		keyPrefix: "session:revoked:",
	}
}

func (r *RedisTokenRevoker) jtiKey(jti string) string {
	return r.keyPrefix + "jti:" + jti
}

func (r *RedisTokenRevoker) userKey(userID string) string {
	return r.keyPrefix + "user:" + userID
}

// Revoke marks a token's JTI as revoked
func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token's JTI has been revoked
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// RevokeUser stores the current timestamp as a user-wide invalidation point
func (r *RedisTokenRevoker) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

// IsUserRevoked reports whether a token predates the user's invalidation point
func (r *RedisTokenRevoker) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	val, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	var revokedAt int64
	if _, err := fmt.Sscanf(val, "%d", &revokedAt); err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ TokenRevoker = (*RedisTokenRevoker)(nil)

// InMemoryTokenRevoker is a process-local TokenRevoker for tests and
// single-instance development setups.
type InMemoryTokenRevoker struct {
	mu          sync.RWMutex
	revokedJTIs map[string]time.Time // JTI -> entry expiry
	userRevokes map[string]time.Time // userID -> revocation time
}

// NewInMemoryTokenRevoker creates an in-memory revoker
func NewInMemoryTokenRevoker() *InMemoryTokenRevoker {
	return &InMemoryTokenRevoker{
		revokedJTIs: make(map[string]time.Time),
		userRevokes: make(map[string]time.Time),
	}
}

// Revoke marks a JTI as revoked until its TTL elapses
func (r *InMemoryTokenRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a JTI is revoked, expiring stale entries lazily
func (r *InMemoryTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, exists := r.revokedJTIs[jti]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records a user-wide invalidation point
func (r *InMemoryTokenRevoker) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userRevokes[userID] = time.Now()
	return nil
}

// IsUserRevoked reports whether a token predates the user's invalidation point
func (r *InMemoryTokenRevoker) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revokedAt, exists := r.userRevokes[userID]
	if !exists {
		return false, nil
	}
	return issuedAt.UnixNano() <= revokedAt.UnixNano(), nil
}

var _ TokenRevoker = (*InMemoryTokenRevoker)(nil)
