package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles sign-in, sign-out and session context switching
type AuthService struct {
	userRepo   identity.UserRepository
	orgRepo    identity.OrgRepository
	branchRepo identity.BranchRepository
	jwtService *auth.JWTService
	revoker    auth.TokenRevoker
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. A nil revoker disables
// early token invalidation; tokens then live until their natural expiry.
func NewAuthService(
	userRepo identity.UserRepository,
	orgRepo identity.OrgRepository,
	branchRepo identity.BranchRepository,
	jwtService *auth.JWTService,
	revoker auth.TokenRevoker,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		branchRepo: branchRepo,
		jwtService: jwtService,
		revoker:    revoker,
		logger:     logger,
	}
}

// LoginResult is an issued session together with the context it represents
type LoginResult struct {
	Session *auth.Session
	Context SessionResponse
}

// Login verifies credentials and issues a session token. Lookup failures and
// password mismatches return the same error so the response does not reveal
// which emails exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("password mismatch on login", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	org, err := s.orgRepo.FindByID(ctx, user.OrgID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive() {
		return nil, shared.NewDomainError("ORG_SUSPENDED", "Organization is not active")
	}

	result, err := s.issue(user, user.OrgID, user.BranchID)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(time.Now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the session is already issued, a failed login stamp is not fatal
		s.logger.Warn("failed to record login time",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("org_id", user.OrgID.String()))
	return result, nil
}

// Logout invalidates the presented session token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil {
		return nil
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("failed to revoke session token", zap.Error(err))
		return err
	}
	return nil
}

// CurrentUser resolves the session context carried in the token claims
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*SessionResponse, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	orgID, err := claims.OrgUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	branchID, err := claims.BranchUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	return &SessionResponse{
		User:        ToUserResponse(user),
		OrgID:       orgID,
		BranchID:    branchID,
		Permissions: permissionStrings(user.Role),
	}, nil
}

// SwitchOrg issues a new session scoped to another org. Platform admins only;
// everyone else is bound to their home org. The branch selection is cleared
// because branches do not carry across orgs.
func (s *AuthService) SwitchOrg(ctx context.Context, claims *auth.Claims, req SwitchOrgRequest) (*LoginResult, error) {
	user, err := s.sessionUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user.Role != identity.RolePlatformAdmin && req.OrgID != user.OrgID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only platform admins can switch organizations")
	}

	org, err := s.orgRepo.FindByID(ctx, req.OrgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Organization not found")
		}
		return nil, err
	}
	if !org.IsActive() {
		return nil, shared.NewDomainError("ORG_SUSPENDED", "Organization is not active")
	}

	result, err := s.issue(user, org.ID, nil)
	if err != nil {
		return nil, err
	}
	s.retire(ctx, claims)
	return result, nil
}

// SwitchBranch issues a new session scoped to another branch of the session
// org. Staff and branch managers are pinned to their assigned branch.
func (s *AuthService) SwitchBranch(ctx context.Context, claims *auth.Claims, req SwitchBranchRequest) (*LoginResult, error) {
	user, err := s.sessionUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	orgID, err := claims.OrgUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}

	switch user.Role {
	case identity.RolePlatformAdmin, identity.RoleOrgAdmin:
	default:
		if user.BranchID == nil || *user.BranchID != req.BranchID {
			return nil, shared.NewDomainError("FORBIDDEN", "You are assigned to a different branch")
		}
	}

	branch, err := s.branchRepo.FindByIDForOrg(ctx, orgID, req.BranchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Branch not found")
		}
		return nil, err
	}
	if !branch.IsActive {
		return nil, shared.NewDomainError("BRANCH_INACTIVE", "Branch is not active")
	}

	result, err := s.issue(user, orgID, &branch.ID)
	if err != nil {
		return nil, err
	}
	s.retire(ctx, claims)
	return result, nil
}

func (s *AuthService) sessionUser(ctx context.Context, claims *auth.Claims) (*identity.User, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}
	return user, nil
}

func (s *AuthService) issue(user *identity.User, orgID uuid.UUID, branchID *uuid.UUID) (*LoginResult, error) {
	session, err := s.jwtService.Issue(auth.SessionInput{
		OrgID:    orgID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		BranchID: branchID,
	})
	if err != nil {
		s.logger.Error("failed to issue session token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to issue session")
	}
	return &LoginResult{
		Session: session,
		Context: SessionResponse{
			User:        ToUserResponse(user),
			OrgID:       orgID,
			BranchID:    branchID,
			Permissions: permissionStrings(user.Role),
		},
	}, nil
}

// retire revokes the superseded token after a context switch, best effort
func (s *AuthService) retire(ctx context.Context, claims *auth.Claims) {
	if s.revoker == nil {
		return
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("failed to retire superseded session token", zap.Error(err))
	}
}
