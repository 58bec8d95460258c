package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(userRepo *MockUserRepository, branchRepo *MockBranchRepository, revoker auth.TokenRevoker) *UserService {
	return NewUserService(userRepo, branchRepo, revoker, time.Hour, nil)
}

func TestCreateUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	branchRepo := new(MockBranchRepository)
	service := newUserService(userRepo, branchRepo, nil)

	orgID := uuid.New()
	branch, err := identity.NewBranch(orgID, "HQ", "Headquarters")
	require.NoError(t, err)

	userRepo.On("FindByEmailForOrg", mock.Anything, orgID, "new@example.com").Return(nil, shared.ErrNotFound)
	branchRepo.On("FindByIDForOrg", mock.Anything, orgID, branch.ID).Return(branch, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := service.CreateUser(context.Background(), orgID, CreateUserRequest{
		Email:    "New@Example.com",
		Password: "long-enough-password",
		Name:     "New Person",
		Role:     string(identity.RoleStaff),
		BranchID: &branch.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, string(identity.RoleStaff), resp.Role)
	require.NotNil(t, resp.BranchID)
	assert.Equal(t, branch.ID, *resp.BranchID)
	assert.True(t, resp.IsActive)
	userRepo.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(userRepo, new(MockBranchRepository), nil)

	orgID := uuid.New()
	existing := newTestUser(t, orgID, identity.RoleStaff)
	userRepo.On("FindByEmailForOrg", mock.Anything, orgID, "pat@example.com").Return(existing, nil)

	_, err := service.CreateUser(context.Background(), orgID, CreateUserRequest{
		Email:    "pat@example.com",
		Password: "long-enough-password",
		Name:     "Duplicate",
		Role:     string(identity.RoleStaff),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateUser_UnknownBranch(t *testing.T) {
	userRepo := new(MockUserRepository)
	branchRepo := new(MockBranchRepository)
	service := newUserService(userRepo, branchRepo, nil)

	orgID := uuid.New()
	branchID := uuid.New()
	userRepo.On("FindByEmailForOrg", mock.Anything, orgID, "new@example.com").Return(nil, shared.ErrNotFound)
	branchRepo.On("FindByIDForOrg", mock.Anything, orgID, branchID).Return(nil, shared.ErrNotFound)

	_, err := service.CreateUser(context.Background(), orgID, CreateUserRequest{
		Email:    "new@example.com",
		Password: "long-enough-password",
		Name:     "New Person",
		Role:     string(identity.RoleStaff),
		BranchID: &branchID,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_BRANCH", domainErr.Code)
}

func TestUpdateUser_ChangesRoleAndBranch(t *testing.T) {
	userRepo := new(MockUserRepository)
	branchRepo := new(MockBranchRepository)
	service := newUserService(userRepo, branchRepo, nil)

	orgID := uuid.New()
	user := newTestUser(t, orgID, identity.RoleStaff)
	branch, err := identity.NewBranch(orgID, "WEST", "West Store")
	require.NoError(t, err)

	userRepo.On("FindByIDForOrg", mock.Anything, orgID, user.ID).Return(user, nil)
	branchRepo.On("FindByIDForOrg", mock.Anything, orgID, branch.ID).Return(branch, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	resp, err := service.UpdateUser(context.Background(), orgID, user.ID, UpdateUserRequest{
		Name:     "Pat Promoted",
		Role:     string(identity.RoleBranchManager),
		BranchID: &branch.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Pat Promoted", resp.Name)
	assert.Equal(t, string(identity.RoleBranchManager), resp.Role)
}

func TestDeactivateUser_RevokesSessions(t *testing.T) {
	userRepo := new(MockUserRepository)
	revoker := auth.NewInMemoryTokenRevoker()
	service := newUserService(userRepo, new(MockBranchRepository), revoker)

	orgID := uuid.New()
	user := newTestUser(t, orgID, identity.RoleStaff)
	issuedAt := time.Now().Add(-time.Minute)

	userRepo.On("FindByIDForOrg", mock.Anything, orgID, user.ID).Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	require.NoError(t, service.DeactivateUser(context.Background(), orgID, user.ID))

	assert.False(t, user.IsActive)
	revoked, err := revoker.IsUserRevoked(context.Background(), user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestResetPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(userRepo, new(MockBranchRepository), nil)

	orgID := uuid.New()
	user := newTestUser(t, orgID, identity.RoleStaff)

	userRepo.On("FindByIDForOrg", mock.Anything, orgID, user.ID).Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	require.NoError(t, service.ResetPassword(context.Background(), orgID, user.ID, ResetPasswordRequest{
		Password: "brand-new-password",
	}))

	assert.True(t, user.VerifyPassword("brand-new-password"))
	assert.False(t, user.VerifyPassword("correct-horse"))
}
