package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrgService handles tenant and branch administration
type OrgService struct {
	orgRepo    identity.OrgRepository
	branchRepo identity.BranchRepository
	logger     *zap.Logger
}

// NewOrgService creates a new org service
func NewOrgService(orgRepo identity.OrgRepository, branchRepo identity.BranchRepository, logger *zap.Logger) *OrgService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{
		orgRepo:    orgRepo,
		branchRepo: branchRepo,
		logger:     logger,
	}
}

// CreateOrg provisions a new tenant. Org codes are globally unique.
func (s *OrgService) CreateOrg(ctx context.Context, req CreateOrgRequest) (*OrgResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	existing, err := s.orgRepo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An organization with this code already exists")
	}

	org, err := identity.NewOrg(code, req.Name)
	if err != nil {
		return nil, err
	}
	applyOrgDetails(org, req.ContactName, req.ContactPhone, req.ContactEmail, req.Address, req.Currency, req.Timezone)

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info("org created", zap.String("org_id", org.ID.String()), zap.String("code", org.Code))
	resp := ToOrgResponse(org)
	return &resp, nil
}

// GetOrg returns a single org
func (s *OrgService) GetOrg(ctx context.Context, id uuid.UUID) (*OrgResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrgResponse(org)
	return &resp, nil
}

// ListOrgs returns a paginated org listing, platform admin only
func (s *OrgService) ListOrgs(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrgResponse], error) {
	orgs, err := s.orgRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orgRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToOrgResponses(orgs), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateOrg updates org name and contact details. The code is immutable.
func (s *OrgService) UpdateOrg(ctx context.Context, id uuid.UUID, req UpdateOrgRequest) (*OrgResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ORG_NAME", "Org name must be 1-200 characters")
	}
	org.Name = name
	applyOrgDetails(org, req.ContactName, req.ContactPhone, req.ContactEmail, req.Address, req.Currency, req.Timezone)
	org.IncrementVersion()

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	resp := ToOrgResponse(org)
	return &resp, nil
}

// SuspendOrg blocks all requests for the tenant
func (s *OrgService) SuspendOrg(ctx context.Context, id uuid.UUID) error {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := org.Suspend(); err != nil {
		return err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return err
	}
	s.logger.Info("org suspended", zap.String("org_id", org.ID.String()))
	return nil
}

// ActivateOrg re-activates a suspended tenant
func (s *OrgService) ActivateOrg(ctx context.Context, id uuid.UUID) error {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	org.Activate()
	return s.orgRepo.Save(ctx, org)
}

// CreateBranch adds a branch to the org. Branch codes are unique per org.
func (s *OrgService) CreateBranch(ctx context.Context, orgID uuid.UUID, req CreateBranchRequest) (*BranchResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	existing, err := s.branchRepo.FindByCodeForOrg(ctx, orgID, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A branch with this code already exists")
	}

	branch, err := identity.NewBranch(orgID, code, req.Name)
	if err != nil {
		return nil, err
	}
	branch.Address = req.Address
	branch.Phone = req.Phone

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	s.logger.Info("branch created",
		zap.String("org_id", orgID.String()),
		zap.String("branch_id", branch.ID.String()))
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// GetBranch returns a single branch
func (s *OrgService) GetBranch(ctx context.Context, orgID, id uuid.UUID) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// ListBranches returns a paginated branch listing for the org
func (s *OrgService) ListBranches(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[BranchResponse], error) {
	branches, err := s.branchRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.branchRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToBranchResponses(branches), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateBranch updates branch contact details. The code is immutable.
func (s *OrgService) UpdateBranch(ctx context.Context, orgID, id uuid.UUID, req UpdateBranchRequest) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name must be 1-200 characters")
	}
	branch.Name = name
	branch.Address = req.Address
	branch.Phone = req.Phone
	branch.IncrementVersion()

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// DeactivateBranch marks the branch inactive. Stock records survive; the
// branch simply stops accepting new documents.
func (s *OrgService) DeactivateBranch(ctx context.Context, orgID, id uuid.UUID) error {
	branch, err := s.branchRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	branch.Deactivate()
	return s.branchRepo.Save(ctx, branch)
}

func applyOrgDetails(org *identity.Org, contactName, contactPhone, contactEmail, address, currency, timezone string) {
	org.ContactName = contactName
	org.ContactPhone = contactPhone
	org.ContactEmail = contactEmail
	org.Address = address
	if currency != "" {
		org.Currency = strings.ToUpper(currency)
	}
	if timezone != "" {
		org.Timezone = timezone
	}
}
