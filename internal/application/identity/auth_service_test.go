package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"github.com/stockflows/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters-long",
		TokenExpiration: time.Hour,
		Issuer:          "stockflows-test",
	})
}

func newTestUser(t *testing.T, orgID uuid.UUID, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(orgID, "pat@example.com", "correct-horse", "Pat Doe", role)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func newTestOrg(t *testing.T) *identity.Org {
	t.Helper()
	org, err := identity.NewOrg("ACME", "Acme Retail")
	require.NoError(t, err)
	return org
}

func newAuthService(userRepo *MockUserRepository, orgRepo *MockOrgRepository, branchRepo *MockBranchRepository, revoker auth.TokenRevoker) *AuthService {
	return NewAuthService(userRepo, orgRepo, branchRepo, newTestJWTService(), revoker, nil)
}

func TestLogin(t *testing.T) {
	userRepo := new(MockUserRepository)
	orgRepo := new(MockOrgRepository)
	service := newAuthService(userRepo, orgRepo, new(MockBranchRepository), nil)

	org := newTestOrg(t)
	user := newTestUser(t, org.ID, identity.RoleOrgAdmin)

	userRepo.On("FindByEmail", mock.Anything, "pat@example.com").Return(user, nil)
	orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	result, err := service.Login(context.Background(), LoginRequest{
		Email:    "Pat@Example.com",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.Token)
	assert.Equal(t, org.ID, result.Context.OrgID)
	assert.Equal(t, "pat@example.com", result.Context.User.Email)
	assert.Contains(t, result.Context.Permissions, string(identity.PermUserManage))
	assert.NotNil(t, user.LastLoginAt)

	claims, err := newTestJWTService().Validate(result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, org.ID.String(), claims.OrgID)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newAuthService(userRepo, new(MockOrgRepository), new(MockBranchRepository), nil)

	user := newTestUser(t, uuid.New(), identity.RoleStaff)
	userRepo.On("FindByEmail", mock.Anything, "pat@example.com").Return(user, nil)

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "pat@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newAuthService(userRepo, new(MockOrgRepository), new(MockBranchRepository), nil)

	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, shared.ErrNotFound)

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever-password",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestLogin_SuspendedOrg(t *testing.T) {
	userRepo := new(MockUserRepository)
	orgRepo := new(MockOrgRepository)
	service := newAuthService(userRepo, orgRepo, new(MockBranchRepository), nil)

	org := newTestOrg(t)
	require.NoError(t, org.Suspend())
	user := newTestUser(t, org.ID, identity.RoleStaff)

	userRepo.On("FindByEmail", mock.Anything, "pat@example.com").Return(user, nil)
	orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "pat@example.com",
		Password: "correct-horse",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ORG_SUSPENDED", domainErr.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	revoker := auth.NewInMemoryTokenRevoker()
	service := newAuthService(new(MockUserRepository), new(MockOrgRepository), new(MockBranchRepository), revoker)

	jwtService := newTestJWTService()
	session, err := jwtService.Issue(auth.SessionInput{
		OrgID:  uuid.New(),
		UserID: uuid.New(),
		Email:  "pat@example.com",
		Role:   identity.RoleStaff,
	})
	require.NoError(t, err)
	claims, err := jwtService.Validate(session.Token)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), claims))

	revoked, err := revoker.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestCurrentUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newAuthService(userRepo, new(MockOrgRepository), new(MockBranchRepository), nil)

	orgID := uuid.New()
	branchID := uuid.New()
	user := newTestUser(t, orgID, identity.RoleBranchManager)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	session, err := newTestJWTService().Issue(auth.SessionInput{
		OrgID:    orgID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		BranchID: &branchID,
	})
	require.NoError(t, err)
	claims, err := newTestJWTService().Validate(session.Token)
	require.NoError(t, err)

	resp, err := service.CurrentUser(context.Background(), claims)

	require.NoError(t, err)
	assert.Equal(t, orgID, resp.OrgID)
	require.NotNil(t, resp.BranchID)
	assert.Equal(t, branchID, *resp.BranchID)
	assert.Contains(t, resp.Permissions, string(identity.PermInventoryAdjust))
	assert.NotContains(t, resp.Permissions, string(identity.PermOrgManage))
}

func TestSwitchOrg_PlatformAdminOnly(t *testing.T) {
	userRepo := new(MockUserRepository)
	orgRepo := new(MockOrgRepository)
	service := newAuthService(userRepo, orgRepo, new(MockBranchRepository), nil)

	homeOrg := uuid.New()
	user := newTestUser(t, homeOrg, identity.RoleOrgAdmin)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	session, err := newTestJWTService().Issue(auth.SessionInput{
		OrgID: homeOrg, UserID: user.ID, Email: user.Email, Role: user.Role,
	})
	require.NoError(t, err)
	claims, err := newTestJWTService().Validate(session.Token)
	require.NoError(t, err)

	_, err = service.SwitchOrg(context.Background(), claims, SwitchOrgRequest{OrgID: uuid.New()})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestSwitchOrg_RetiresOldToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	orgRepo := new(MockOrgRepository)
	revoker := auth.NewInMemoryTokenRevoker()
	service := newAuthService(userRepo, orgRepo, new(MockBranchRepository), revoker)

	user := newTestUser(t, uuid.New(), identity.RolePlatformAdmin)
	target := newTestOrg(t)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	orgRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

	session, err := newTestJWTService().Issue(auth.SessionInput{
		OrgID: user.OrgID, UserID: user.ID, Email: user.Email, Role: user.Role,
	})
	require.NoError(t, err)
	claims, err := newTestJWTService().Validate(session.Token)
	require.NoError(t, err)

	result, err := service.SwitchOrg(context.Background(), claims, SwitchOrgRequest{OrgID: target.ID})

	require.NoError(t, err)
	assert.Equal(t, target.ID, result.Context.OrgID)
	assert.Nil(t, result.Context.BranchID)

	revoked, err := revoker.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSwitchBranch_StaffPinnedToBranch(t *testing.T) {
	userRepo := new(MockUserRepository)
	branchRepo := new(MockBranchRepository)
	service := newAuthService(userRepo, new(MockOrgRepository), branchRepo, nil)

	orgID := uuid.New()
	assigned := uuid.New()
	user := newTestUser(t, orgID, identity.RoleStaff)
	user.AssignBranch(&assigned)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	session, err := newTestJWTService().Issue(auth.SessionInput{
		OrgID: orgID, UserID: user.ID, Email: user.Email, Role: user.Role, BranchID: &assigned,
	})
	require.NoError(t, err)
	claims, err := newTestJWTService().Validate(session.Token)
	require.NoError(t, err)

	_, err = service.SwitchBranch(context.Background(), claims, SwitchBranchRequest{BranchID: uuid.New()})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestSwitchBranch_OrgAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	branchRepo := new(MockBranchRepository)
	service := newAuthService(userRepo, new(MockOrgRepository), branchRepo, nil)

	orgID := uuid.New()
	user := newTestUser(t, orgID, identity.RoleOrgAdmin)
	branch, err := identity.NewBranch(orgID, "HQ", "Headquarters")
	require.NoError(t, err)

	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	branchRepo.On("FindByIDForOrg", mock.Anything, orgID, branch.ID).Return(branch, nil)

	session, err := newTestJWTService().Issue(auth.SessionInput{
		OrgID: orgID, UserID: user.ID, Email: user.Email, Role: user.Role,
	})
	require.NoError(t, err)
	claims, err := newTestJWTService().Validate(session.Token)
	require.NoError(t, err)

	result, err := service.SwitchBranch(context.Background(), claims, SwitchBranchRequest{BranchID: branch.ID})

	require.NoError(t, err)
	require.NotNil(t, result.Context.BranchID)
	assert.Equal(t, branch.ID, *result.Context.BranchID)
}
