package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByEmailForOrg(ctx context.Context, orgID uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, orgID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockOrgRepository is a mock implementation of identity.OrgRepository
type MockOrgRepository struct {
	mock.Mock
}

func (m *MockOrgRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Org, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Org), args.Error(1)
}

func (m *MockOrgRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Org, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Org), args.Error(1)
}

func (m *MockOrgRepository) Save(ctx context.Context, org *identity.Org) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrgRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrgRepository) FindByCode(ctx context.Context, code string) (*identity.Org, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Org), args.Error(1)
}

// MockBranchRepository is a mock implementation of identity.BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Branch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBranchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBranchRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*identity.Branch, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]identity.Branch, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBranchRepository) FindByCodeForOrg(ctx context.Context, orgID uuid.UUID, code string) (*identity.Branch, error) {
	args := m.Called(ctx, orgID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}
