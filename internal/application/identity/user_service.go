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

// UserService handles user administration within an org
type UserService struct {
	userRepo   identity.UserRepository
	branchRepo identity.BranchRepository
	revoker    auth.TokenRevoker
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewUserService creates a new user service. The revoker (optional) is used
// to force sign-out when a user is deactivated; sessionTTL bounds how long
// the revocation marker must outlive the newest possible token.
func NewUserService(
	userRepo identity.UserRepository,
	branchRepo identity.BranchRepository,
	revoker auth.TokenRevoker,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		revoker:    revoker,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// CreateUser creates a user in the org. Emails are unique per org.
func (s *UserService) CreateUser(ctx context.Context, orgID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.FindByEmailForOrg(ctx, orgID, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(orgID, email, req.Password, req.Name, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.assignBranch(ctx, orgID, user, req.BranchID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetUser returns a single user
func (s *UserService) GetUser(ctx context.Context, orgID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers returns a paginated user listing for the org
func (s *UserService) ListUsers(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	users, err := s.userRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToUserResponses(users), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateUser updates a user's name, role and branch assignment
func (s *UserService) UpdateUser(ctx context.Context, orgID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-200 characters")
	}
	user.Name = name
	if err := user.ChangeRole(identity.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.assignBranch(ctx, orgID, user, req.BranchID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ResetPassword replaces a user's password (admin action)
func (s *UserService) ResetPassword(ctx context.Context, orgID, id uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.forceSignOut(ctx, user.ID)
	return nil
}

// DeactivateUser disables sign-in and revokes the user's active sessions
func (s *UserService) DeactivateUser(ctx context.Context, orgID, id uuid.UUID) error {
	user, err := s.userRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	user.ClearDomainEvents()
	s.forceSignOut(ctx, user.ID)
	s.logger.Info("user deactivated", zap.String("user_id", user.ID.String()))
	return nil
}

// ActivateUser re-enables sign-in
func (s *UserService) ActivateUser(ctx context.Context, orgID, id uuid.UUID) error {
	user, err := s.userRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	user.Activate()
	return s.userRepo.Save(ctx, user)
}

// assignBranch validates the branch belongs to the org before pinning
func (s *UserService) assignBranch(ctx context.Context, orgID uuid.UUID, user *identity.User, branchID *uuid.UUID) error {
	if branchID == nil {
		user.AssignBranch(nil)
		return nil
	}
	branch, err := s.branchRepo.FindByIDForOrg(ctx, orgID, *branchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_BRANCH", "Branch does not exist in this organization")
		}
		return err
	}
	user.AssignBranch(&branch.ID)
	return nil
}

func (s *UserService) forceSignOut(ctx context.Context, userID uuid.UUID) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeUser(ctx, userID.String(), s.sessionTTL); err != nil {
		s.logger.Warn("failed to revoke user sessions",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}
