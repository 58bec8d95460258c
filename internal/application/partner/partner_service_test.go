package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateSupplier(t *testing.T) {
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	orgID := uuid.New()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Supplier")).Return(nil)

	resp, err := service.CreateSupplier(context.Background(), orgID, CreateSupplierRequest{
		Name:  "Acme Supplies",
		Email: "Sales@Acme.example",
		Phone: "+1 555 0100",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", resp.Name)
	// contact emails are normalized to lowercase
	assert.Equal(t, "sales@acme.example", resp.Email)
	assert.True(t, resp.IsActive)
	repo.AssertExpectations(t)
}

func TestCreateSupplier_EmptyName(t *testing.T) {
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	_, err := service.CreateSupplier(context.Background(), uuid.New(), CreateSupplierRequest{Name: "   "})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_NAME", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateSupplier(t *testing.T) {
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	orgID := uuid.New()
	supplier, err := partner.NewSupplier(orgID, "Acme Supplies")
	require.NoError(t, err)

	repo.On("FindByIDForOrg", mock.Anything, orgID, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, supplier).Return(nil)

	resp, err := service.UpdateSupplier(context.Background(), orgID, supplier.ID, UpdateSupplierRequest{
		Name:    "Acme Wholesale",
		Address: "4 Dock St",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Wholesale", resp.Name)
	assert.Equal(t, "4 Dock St", resp.Address)
}

func TestDeactivateSupplier(t *testing.T) {
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	orgID := uuid.New()
	supplier, err := partner.NewSupplier(orgID, "Acme Supplies")
	require.NoError(t, err)

	repo.On("FindByIDForOrg", mock.Anything, orgID, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, supplier).Return(nil)

	require.NoError(t, service.DeactivateSupplier(context.Background(), orgID, supplier.ID))
	assert.False(t, supplier.IsActive)
}

func TestCreateCustomer_InvalidEmail(t *testing.T) {
	repo := new(MockCustomerRepository)
	service := NewCustomerService(repo, nil)

	_, err := service.CreateCustomer(context.Background(), uuid.New(), CreateCustomerRequest{
		Name:  "Jane Retail",
		Email: "not-an-email",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
}

func TestListCustomers(t *testing.T) {
	repo := new(MockCustomerRepository)
	service := NewCustomerService(repo, nil)

	orgID := uuid.New()
	first, err := partner.NewCustomer(orgID, "Jane Retail")
	require.NoError(t, err)
	second, err := partner.NewCustomer(orgID, "Bulk Buyer Co")
	require.NoError(t, err)

	filter := shared.DefaultFilter()
	repo.On("FindAllForOrg", mock.Anything, orgID, filter).Return([]partner.Customer{*first, *second}, nil)
	repo.On("CountForOrg", mock.Anything, orgID, filter).Return(int64(2), nil)

	result, err := service.ListCustomers(context.Background(), orgID, filter)

	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, 1, result.TotalPages)
}
