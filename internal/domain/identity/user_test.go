package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		role     Role
		wantErr  string
	}{
		{"valid staff", "alice@example.com", "s3cretpass", "Alice", RoleStaff, ""},
		{"email normalized", "  Bob@Example.COM ", "s3cretpass", "Bob", RoleOrgAdmin, ""},
		{"bad email", "not-an-email", "s3cretpass", "X", RoleStaff, "INVALID_EMAIL"},
		{"short password", "a@b.co", "short", "X", RoleStaff, "INVALID_PASSWORD"},
		{"empty name", "a@b.co", "s3cretpass", "  ", RoleStaff, "INVALID_NAME"},
		{"unknown role", "a@b.co", "s3cretpass", "X", Role("SUPERUSER"), "INVALID_ROLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser(orgID, tt.email, tt.password, tt.userName, tt.role)
			if tt.wantErr != "" {
				require.Error(t, err)
				var derr *shared.DomainError
				require.ErrorAs(t, err, &derr)
				assert.Equal(t, tt.wantErr, derr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, orgID, user.OrgID)
			assert.True(t, user.IsActive)
			assert.True(t, user.VerifyPassword(tt.password))
			assert.False(t, user.VerifyPassword("wrong"))
			assert.Len(t, user.GetDomainEvents(), 1)
		})
	}

	t.Run("email lowercased", func(t *testing.T) {
		user, err := NewUser(orgID, "  Bob@Example.COM ", "s3cretpass", "Bob", RoleStaff)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", user.Email)
	})
}

func TestUserDeactivate(t *testing.T) {
	user, err := NewUser(uuid.New(), "carol@example.com", "s3cretpass", "Carol", RoleStaff)
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.NoError(t, user.Deactivate())
	assert.False(t, user.IsActive)
	assert.Len(t, user.GetDomainEvents(), 1)

	err = user.Deactivate()
	require.Error(t, err)

	user.Activate()
	assert.True(t, user.IsActive)
}

func TestUserRecordLogin(t *testing.T) {
	user, err := NewUser(uuid.New(), "dave@example.com", "s3cretpass", "Dave", RoleBranchManager)
	require.NoError(t, err)

	now := time.Now()
	user.RecordLogin(now)
	require.NotNil(t, user.LastLoginAt)
	assert.Equal(t, now, *user.LastLoginAt)
}

func TestUserHasPermission(t *testing.T) {
	user, err := NewUser(uuid.New(), "erin@example.com", "s3cretpass", "Erin", RoleStaff)
	require.NoError(t, err)

	assert.True(t, user.HasPermission(PermOrderWrite))
	assert.False(t, user.HasPermission(PermInventoryAdjust))

	require.NoError(t, user.ChangeRole(RoleBranchManager))
	assert.True(t, user.HasPermission(PermInventoryAdjust))
}
