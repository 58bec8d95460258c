package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-with-at-least-32-characters",
		TokenExpiration: expiration,
		Issuer:          "stockflows-test",
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	orgID := uuid.New()
	userID := uuid.New()
	branchID := uuid.New()

	session, err := svc.Issue(SessionInput{
		OrgID:    orgID,
		UserID:   userID,
		Email:    "manager@example.com",
		Role:     identity.RoleBranchManager,
		BranchID: &branchID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)

	gotOrg, err := claims.OrgUUID()
	require.NoError(t, err)
	assert.Equal(t, orgID, gotOrg)

	gotUser, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)

	gotBranch, err := claims.BranchUUID()
	require.NoError(t, err)
	require.NotNil(t, gotBranch)
	assert.Equal(t, branchID, *gotBranch)

	assert.Equal(t, identity.RoleBranchManager, claims.UserRole())
	assert.Equal(t, "manager@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "JTI must be set for revocation")
	assert.Greater(t, claims.RemainingTTL(), time.Duration(0))
}

func TestValidateNoBranch(t *testing.T) {
	svc := newTestService(time.Hour)

	session, err := svc.Issue(SessionInput{
		OrgID:  uuid.New(),
		UserID: uuid.New(),
		Email:  "admin@example.com",
		Role:   identity.RoleOrgAdmin,
	})
	require.NoError(t, err)

	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)

	branch, err := claims.BranchUUID()
	require.NoError(t, err)
	assert.Nil(t, branch)
}

func TestValidateRejections(t *testing.T) {
	svc := newTestService(time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-completely-different-32-char-secret!!",
			TokenExpiration: time.Hour,
			Issuer:          "stockflows-test",
		})
		session, err := other.Issue(SessionInput{
			OrgID:  uuid.New(),
			UserID: uuid.New(),
			Role:   identity.RoleStaff,
		})
		require.NoError(t, err)

		_, err = svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestService(-time.Minute)
		session, err := expired.Issue(SessionInput{
			OrgID:  uuid.New(),
			UserID: uuid.New(),
			Role:   identity.RoleStaff,
		})
		require.NoError(t, err)

		_, err = svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestInMemoryTokenRevoker(t *testing.T) {
	ctx := context.Background()
	revoker := NewInMemoryTokenRevoker()

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("expired entries drop out", func(t *testing.T) {
		require.NoError(t, revoker.Revoke(ctx, "jti-2", -time.Second))
		revoked, err := revoker.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("user-wide revocation", func(t *testing.T) {
		userID := uuid.New().String()
		issuedBefore := time.Now()

		require.NoError(t, revoker.RevokeUser(ctx, userID, time.Hour))

		invalid, err := revoker.IsUserRevoked(ctx, userID, issuedBefore)
		require.NoError(t, err)
		assert.True(t, invalid)

		invalid, err = revoker.IsUserRevoked(ctx, userID, time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, invalid)

		invalid, err = revoker.IsUserRevoked(ctx, "other-user", issuedBefore)
		require.NoError(t, err)
		assert.False(t, invalid)
	})
}
