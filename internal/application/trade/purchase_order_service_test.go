package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSupplier(t *testing.T, orgID uuid.UUID) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier(orgID, "Acme Supplies")
	require.NoError(t, err)
	return supplier
}

func newTestProduct(t *testing.T, orgID uuid.UUID, sku string, cost int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(orgID, sku, "Product "+sku)
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(decimal.NewFromInt(cost*2), decimal.NewFromInt(cost)))
	return product
}

func newPendingPO(t *testing.T, orgID uuid.UUID, product *catalog.Product, qty int64) *trade.PurchaseOrder {
	t.Helper()
	order, err := trade.NewPurchaseOrder(orgID, uuid.New(), "PO-202609-0001", uuid.New(), "Acme Supplies")
	require.NoError(t, err)
	_, err = order.AddItem(product.ID, product.Name, product.SKU, decimal.NewFromInt(qty), product.Cost)
	require.NoError(t, err)
	require.NoError(t, order.Submit())
	order.ClearDomainEvents()
	return order
}

func TestCreatePurchaseOrder(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	supplierRepo := new(MockSupplierRepository)
	productRepo := new(MockProductRepository)
	service := NewPurchaseOrderService(orderRepo, supplierRepo, productRepo, nil, nil)

	orgID := uuid.New()
	supplier := newTestSupplier(t, orgID)
	product := newTestProduct(t, orgID, "WIDGET-01", 10)

	supplierRepo.On("FindByIDForOrg", mock.Anything, orgID, supplier.ID).Return(supplier, nil)
	orderRepo.On("NextOrderNumber", mock.Anything, orgID).Return("PO-202609-0001", nil)
	productRepo.On("FindByIDForOrg", mock.Anything, orgID, product.ID).Return(product, nil)
	orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

	resp, err := service.CreatePurchaseOrder(context.Background(), orgID, uuid.New(), CreatePurchaseOrderRequest{
		BranchID:   uuid.New(),
		SupplierID: supplier.ID,
		Items: []OrderItemRequest{
			{ProductID: product.ID, Qty: decimal.NewFromInt(5)},
		},
		TaxRate: decimal.NewFromFloat(0.07),
	})

	require.NoError(t, err)
	assert.Equal(t, "PO-202609-0001", resp.OrderNumber)
	assert.Equal(t, string(trade.PurchaseOrderStatusDraft), resp.Status)
	require.Len(t, resp.Items, 1)
	// unit cost defaults to the product's recorded cost
	assert.True(t, resp.Items[0].UnitCost.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, resp.TaxAmount.Equal(decimal.NewFromFloat(3.5)))
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(53.5)))
	orderRepo.AssertExpectations(t)
}

func TestCreatePurchaseOrder_InactiveSupplier(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	supplierRepo := new(MockSupplierRepository)
	service := NewPurchaseOrderService(orderRepo, supplierRepo, new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	supplier := newTestSupplier(t, orgID)
	supplier.Deactivate()
	supplierRepo.On("FindByIDForOrg", mock.Anything, orgID, supplier.ID).Return(supplier, nil)

	_, err := service.CreatePurchaseOrder(context.Background(), orgID, uuid.New(), CreatePurchaseOrderRequest{
		BranchID:   uuid.New(),
		SupplierID: supplier.ID,
		Items:      []OrderItemRequest{{ProductID: uuid.New(), Qty: decimal.NewFromInt(1)}},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SUPPLIER", domainErr.Code)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitPurchaseOrder(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewPurchaseOrderService(orderRepo, new(MockSupplierRepository), new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	product := newTestProduct(t, orgID, "WIDGET-01", 10)
	order, err := trade.NewPurchaseOrder(orgID, uuid.New(), "PO-202609-0001", uuid.New(), "Acme Supplies")
	require.NoError(t, err)
	_, err = order.AddItem(product.ID, product.Name, product.SKU, decimal.NewFromInt(3), product.Cost)
	require.NoError(t, err)
	order.ClearDomainEvents()

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.SubmitPurchaseOrder(context.Background(), orgID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusPending), resp.Status)
	assert.NotNil(t, resp.SubmittedAt)
}

func TestReceivePurchaseOrder_Partial(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewPurchaseOrderService(orderRepo, new(MockSupplierRepository), new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	product := newTestProduct(t, orgID, "WIDGET-01", 10)
	order := newPendingPO(t, orgID, product, 10)
	itemID := order.Items[0].ID

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.ReceivePurchaseOrder(context.Background(), orgID, order.ID, ReceivePurchaseOrderRequest{
		Lines: []ReceiveLineRequest{{ItemID: itemID, Qty: decimal.NewFromInt(4)}},
	})

	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusPartial), resp.Status)
	assert.True(t, resp.Items[0].QtyReceived.Equal(decimal.NewFromInt(4)))
	assert.True(t, resp.Items[0].QtyPending.Equal(decimal.NewFromInt(6)))
}

func TestReceivePurchaseOrder_OverReceiptRejected(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewPurchaseOrderService(orderRepo, new(MockSupplierRepository), new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	product := newTestProduct(t, orgID, "WIDGET-01", 10)
	order := newPendingPO(t, orgID, product, 10)
	itemID := order.Items[0].ID

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)

	_, err := service.ReceivePurchaseOrder(context.Background(), orgID, order.ID, ReceivePurchaseOrderRequest{
		Lines: []ReceiveLineRequest{{ItemID: itemID, Qty: decimal.NewFromInt(11)}},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "QUANTITY_EXCEEDED", domainErr.Code)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecordPayment(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewPurchaseOrderService(orderRepo, new(MockSupplierRepository), new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	product := newTestProduct(t, orgID, "WIDGET-01", 10)
	order := newPendingPO(t, orgID, product, 10) // grand total 100

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.RecordPayment(context.Background(), orgID, order.ID, RecordPaymentRequest{
		Amount: decimal.NewFromInt(40),
	})

	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatusPartial), resp.PaymentStatus)
	assert.True(t, resp.DueAmount.Equal(decimal.NewFromInt(60)))
}

func TestDeletePurchaseOrder_NonDraftRejected(t *testing.T) {
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewPurchaseOrderService(orderRepo, new(MockSupplierRepository), new(MockProductRepository), nil, nil)

	orgID := uuid.New()
	product := newTestProduct(t, orgID, "WIDGET-01", 10)
	order := newPendingPO(t, orgID, product, 10)

	orderRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)

	err := service.DeletePurchaseOrder(context.Background(), orgID, order.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
