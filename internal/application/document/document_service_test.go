package document

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/document"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepository is a mock implementation of document.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) FindBySource(ctx context.Context, orgID uuid.UUID, docType document.DocumentType, sourceID uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, orgID, docType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
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

func (m *MockSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, filter)
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

func (m *MockSalesOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
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

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
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

func (m *MockPurchaseOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
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

func TestRenderInvoice(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	soRepo := new(MockSalesOrderRepository)
	service := NewDocumentService(docRepo, soRepo, new(MockPurchaseOrderRepository), "EUR", nil)

	orgID := uuid.New()
	order, err := trade.NewSalesOrder(orgID, uuid.New(), "SO-202609-0001", uuid.New(), "Jane & Co <Retail>")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(3), decimal.NewFromFloat(1234.5))
	require.NoError(t, err)

	soRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	docRepo.On("FindBySource", mock.Anything, orgID, document.DocumentTypeInvoice, order.ID).Return(nil, shared.ErrNotFound)
	docRepo.On("Save", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

	rendered, err := service.RenderInvoice(context.Background(), orgID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "invoice-SO-202609-0001.html", rendered.Filename)
	assert.Equal(t, "text/html; charset=utf-8", rendered.ContentType)

	html := string(rendered.Content)
	assert.Contains(t, html, "SO-202609-0001")
	assert.Contains(t, html, "WIDGET-01")
	// money is formatted with thousand separators and the org currency
	assert.Contains(t, html, "1,234.50")
	assert.Contains(t, html, "3,703.50 EUR")
	// customer names are HTML-escaped
	assert.NotContains(t, html, "<Retail>")
	docRepo.AssertExpectations(t)
}

func TestRenderInvoice_CancelledOrderRejected(t *testing.T) {
	soRepo := new(MockSalesOrderRepository)
	service := NewDocumentService(new(MockDocumentRepository), soRepo, new(MockPurchaseOrderRepository), "", nil)

	orgID := uuid.New()
	order, err := trade.NewSalesOrder(orgID, uuid.New(), "SO-202609-0001", uuid.New(), "Jane Retail")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(1), decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, order.Cancel("customer withdrew"))

	soRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)

	_, err = service.RenderInvoice(context.Background(), orgID, order.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestRenderReceipt(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	poRepo := new(MockPurchaseOrderRepository)
	service := NewDocumentService(docRepo, new(MockSalesOrderRepository), poRepo, "USD", nil)

	orgID := uuid.New()
	order, err := trade.NewPurchaseOrder(orgID, uuid.New(), "PO-202609-0001", uuid.New(), "Acme Supplies")
	require.NoError(t, err)
	item, err := order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(10), decimal.NewFromInt(8))
	require.NoError(t, err)
	require.NoError(t, order.Submit())
	_, err = order.Receive([]trade.ReceiveLine{{ItemID: item.ID, Qty: decimal.NewFromInt(4)}})
	require.NoError(t, err)

	poRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	docRepo.On("FindBySource", mock.Anything, orgID, document.DocumentTypeReceipt, order.ID).Return(nil, shared.ErrNotFound)
	docRepo.On("Save", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

	rendered, err := service.RenderReceipt(context.Background(), orgID, order.ID)

	require.NoError(t, err)
	html := string(rendered.Content)
	assert.Contains(t, html, "GOODS RECEIPT")
	assert.Contains(t, html, "Acme Supplies")
	// the receipt shows ordered vs received quantities
	assert.True(t, strings.Contains(html, ">10<") || strings.Contains(html, ">10</td>"))
	assert.Contains(t, html, "80.00 USD")
}

func TestRenderReceipt_NothingReceived(t *testing.T) {
	poRepo := new(MockPurchaseOrderRepository)
	service := NewDocumentService(new(MockDocumentRepository), new(MockSalesOrderRepository), poRepo, "", nil)

	orgID := uuid.New()
	order, err := trade.NewPurchaseOrder(orgID, uuid.New(), "PO-202609-0001", uuid.New(), "Acme Supplies")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(10), decimal.NewFromInt(8))
	require.NoError(t, err)

	poRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)

	_, err = service.RenderReceipt(context.Background(), orgID, order.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestRenderInvoice_RerenderReplacesStoredCopy(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	soRepo := new(MockSalesOrderRepository)
	service := NewDocumentService(docRepo, soRepo, new(MockPurchaseOrderRepository), "USD", nil)

	orgID := uuid.New()
	order, err := trade.NewSalesOrder(orgID, uuid.New(), "SO-202609-0001", uuid.New(), "Jane Retail")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "WIDGET-01", decimal.NewFromInt(1), decimal.NewFromInt(20))
	require.NoError(t, err)

	stored, err := document.NewDocument(orgID, document.DocumentTypeInvoice, document.SourceTypeSalesOrder,
		order.ID, order.OrderNumber, "text/html; charset=utf-8", "<html>stale</html>")
	require.NoError(t, err)

	soRepo.On("FindByIDForOrg", mock.Anything, orgID, order.ID).Return(order, nil)
	docRepo.On("FindBySource", mock.Anything, orgID, document.DocumentTypeInvoice, order.ID).Return(stored, nil)
	docRepo.On("Save", mock.Anything, stored).Return(nil)

	_, err = service.RenderInvoice(context.Background(), orgID, order.ID)

	require.NoError(t, err)
	assert.NotContains(t, stored.Content, "stale")
	assert.Contains(t, stored.Content, "SO-202609-0001")
}
