package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, orgID uuid.UUID) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(orgID, "Jane Retail")
	require.NoError(t, err)
	return customer
}

func newStockedLevel(t *testing.T, orgID, branchID, productID uuid.UUID, onHand int64) *inventory.StockLevel {
	t.Helper()
	level, err := inventory.NewStockLevel(orgID, branchID, productID)
	require.NoError(t, err)
	require.NoError(t, level.Increase(decimal.NewFromInt(onHand)))
	return level
}

func TestCreateSalesOrder(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	customerRepo := new(MockCustomerRepository)
	productRepo := new(MockProductRepository)
	levelRepo := new(MockStockLevelRepository)
	service := NewSalesOrderService(orderRepo, customerRepo, productRepo, levelRepo, nil, nil)

	orgID := uuid.New()
	branchID := uuid.New()
	customer := newTestCustomer(t, orgID)
	product := newTestProduct(t, orgID, "WIDGET-01", 10) // price 20

	customerRepo.On("FindByIDForOrg", mock.Anything, orgID, customer.ID).Return(customer, nil)
	orderRepo.On("NextOrderNumber", mock.Anything, orgID).Return("SO-202609-0001", nil)
	productRepo.On("FindByIDForOrg", mock.Anything, orgID, product.ID).Return(product, nil)
	levelRepo.On("FindByBranchProduct", mock.Anything, orgID, branchID, product.ID).
		Return(newStockedLevel(t, orgID, branchID, product.ID, 100), nil)
	orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*trade.SalesOrder")).Return(nil)

	resp, err := service.CreateSalesOrder(context.Background(), orgID, uuid.New(), CreateSalesOrderRequest{
		BranchID:   branchID,
		CustomerID: customer.ID,
		Items: []OrderItemRequest{
			{ProductID: product.ID, Qty: decimal.NewFromInt(3)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "SO-202609-0001", resp.OrderNumber)
	assert.Equal(t, string(trade.SalesOrderStatusPending), resp.Status)
	require.Len(t, resp.Items, 1)
	// unit price defaults to the product's selling price
	assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(60)))
	orderRepo.AssertExpectations(t)
}

func TestCreateSalesOrder_InsufficientStock(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	customerRepo := new(MockCustomerRepository)
	productRepo := new(MockProductRepository)
	levelRepo := new(MockStockLevelRepository)
	service := NewSalesOrderService(orderRepo, customerRepo, productRepo, levelRepo, nil, nil)

	orgID := uuid.New()
	branchID := uuid.New()
	customer := newTestCustomer(t, orgID)
	product := newTestProduct(t, orgID, "WIDGET-01", 10)

	level := newStockedLevel(t, orgID, branchID, product.ID, 5)
	require.NoError(t, level.Reserve(decimal.NewFromInt(3))) // 2 available

	customerRepo.On("FindByIDForOrg", mock.Anything, orgID, customer.ID).Return(customer, nil)
	orderRepo.On("NextOrderNumber", mock.Anything, orgID).Return("SO-202609-0001", nil)
	productRepo.On("FindByIDForOrg", mock.Anything, orgID, product.ID).Return(product, nil)
	levelRepo.On("FindByBranchProduct", mock.Anything, orgID, branchID, product.ID).Return(level, nil)

	_, err := service.CreateSalesOrder(context.Background(), orgID, uuid.New(), CreateSalesOrderRequest{
		BranchID:   branchID,
		CustomerID: customer.ID,
		Items: []OrderItemRequest{
			{ProductID: product.ID, Qty: decimal.NewFromInt(3)},
		},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateSalesOrder_NoStockRecord(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	customerRepo := new(MockCustomerRepository)
	productRepo := new(MockProductRepository)
	levelRepo := new(MockStockLevelRepository)
	service := NewSalesOrderService(orderRepo, customerRepo, productRepo, levelRepo, nil, nil)

	orgID := uuid.New()
	branchID := uuid.New()
	customer := newTestCustomer(t, orgID)
	product := newTestProduct(t, orgID, "WIDGET-01", 10)

	customerRepo.On("FindByIDForOrg", mock.Anything, orgID, customer.ID).Return(customer, nil)
	orderRepo.On("NextOrderNumber", mock.Anything, orgID).Return("SO-202609-0001", nil)
	productRepo.On("FindByIDForOrg", mock.Anything, orgID, product.ID).Return(product, nil)
	levelRepo.On("FindByBranchProduct", mock.Anything, orgID, branchID, product.ID).Return(nil, shared.ErrNotFound)

	_, err := service.CreateSalesOrder(context.Background(), orgID, uuid.New(), CreateSalesOrderRequest{
		BranchID:   branchID,
		CustomerID: customer.ID,
		Items: []OrderItemRequest{
			{ProductID: product.ID, Qty: decimal.NewFromInt(1)},
		},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
}

func newPendingSO(t *testing.T, orgID uuid.UUID) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder(orgID, uuid.New(), "SO-202609-0001", uuid.New(), "Jane Retail")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(2), decimal.NewFromInt(20))
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func TestShipSalesOrder(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo, new(MockCustomerRepository), new(MockProductRepository), new(MockStockLevelRepository), nil, nil)

	orgID := uuid.New()
	order := newPendingSO(t, orgID)

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.ShipSalesOrder(context.Background(), orgID, order.ID, ShipSalesOrderRequest{
		Carrier:        "DHL",
		TrackingNumber: "JD014600003829",
	})

	require.NoError(t, err)
	assert.Equal(t, string(trade.SalesOrderStatusShipped), resp.Status)
	assert.Equal(t, "DHL", resp.Carrier)
	assert.NotNil(t, resp.ShippedAt)
}

func TestCompleteSalesOrder_RequiresShipment(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo, new(MockCustomerRepository), new(MockProductRepository), new(MockStockLevelRepository), nil, nil)

	orgID := uuid.New()
	order := newPendingSO(t, orgID)
	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)

	_, err := service.CompleteSalesOrder(context.Background(), orgID, order.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestCancelSalesOrder(t *testing.T) {
	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo, new(MockCustomerRepository), new(MockProductRepository), new(MockStockLevelRepository), nil, nil)

	orgID := uuid.New()
	order := newPendingSO(t, orgID)

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.CancelSalesOrder(context.Background(), orgID, order.ID, CancelRequest{Reason: "customer withdrew"})

	require.NoError(t, err)
	assert.Equal(t, string(trade.SalesOrderStatusCancelled), resp.Status)
	assert.Equal(t, "customer withdrew", resp.CancelReason)
}
