package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of trade.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of trade.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*trade.SalesOrder, error) {
	args := m.Called(ctx, orgID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

// MockReturnRepository is a mock implementation of trade.ReturnRepository
type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.ReturnRequest, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.ReturnRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.ReturnRequest, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) Save(ctx context.Context, ret *trade.ReturnRequest) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockReturnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnRepository) FindOpenBySource(ctx context.Context, orgID, sourceID uuid.UUID) ([]trade.ReturnRequest, error) {
	args := m.Called(ctx, orgID, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) NextReturnNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

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

func (m *MockSupplierRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, orgID, id)
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

func (m *MockSupplierRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, orgID, filter)
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

func (m *MockCustomerRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, orgID, id)
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

func (m *MockCustomerRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, orgID, filter)
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

func (m *MockCustomerRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindBySKUForOrg(ctx context.Context, orgID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, orgID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, orgID, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, orgID, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockLevelRepository is a mock implementation of inventory.StockLevelRepository
type MockStockLevelRepository struct {
	mock.Mock
}

func (m *MockStockLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLevel, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockStockLevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStockLevelRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockLevelRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockLevelRepository) FindByBranchProduct(ctx context.Context, orgID, branchID, productID uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, orgID, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindByBranch(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	args := m.Called(ctx, orgID, branchID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindLowStock(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID) ([]inventory.StockLevel, error) {
	args := m.Called(ctx, orgID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLevel), args.Error(1)
}
