package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appreport "github.com/stockflows/backend/internal/application/report"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSalesReportRepository is a mock implementation of report.SalesReportRepository
type MockSalesReportRepository struct {
	mock.Mock
}

func (m *MockSalesReportRepository) Summary(ctx context.Context, filter report.SalesFilter) (*report.SalesSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func (m *MockSalesReportRepository) DailyTrend(ctx context.Context, filter report.SalesFilter) ([]report.DailySales, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.DailySales), args.Error(1)
}

// MockInventoryReportRepository is a mock implementation of report.InventoryReportRepository
type MockInventoryReportRepository struct {
	mock.Mock
}

func (m *MockInventoryReportRepository) Valuation(ctx context.Context, filter report.ValuationFilter) ([]report.ValuationLine, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ValuationLine), args.Error(1)
}

func (m *MockInventoryReportRepository) ValuationSummary(ctx context.Context, filter report.ValuationFilter) (*report.ValuationSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ValuationSummary), args.Error(1)
}

func (m *MockInventoryReportRepository) LowStock(ctx context.Context, filter report.ValuationFilter) ([]report.LowStockLine, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LowStockLine), args.Error(1)
}

func newReportRouter(sales *MockSalesReportRepository, inv *MockInventoryReportRepository, branchID *uuid.UUID) (*gin.Engine, uuid.UUID) {
	service := appreport.NewReportService(sales, inv, nil)
	h := NewReportHandler(service)
	scope := testScope(identity.RoleOrgAdmin, branchID)

	r := gin.New()
	g := r.Group("", withScope(scope))
	g.GET("/reports/sales", h.Sales)
	g.GET("/reports/inventory", h.Inventory)
	return r, scope.OrgID
}

func TestReportSales(t *testing.T) {
	sales := new(MockSalesReportRepository)
	r, orgID := newReportRouter(sales, new(MockInventoryReportRepository), nil)

	expected := report.SalesFilter{
		OrgID:     orgID,
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	sales.On("Summary", mock.Anything, expected).Return(&report.SalesSummary{
		TotalOrders: 7,
		TotalAmount: decimal.NewFromInt(1400),
	}, nil)
	sales.On("DailyTrend", mock.Anything, expected).Return([]report.DailySales{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/reports/sales?start_date=2026-08-01&end_date=2026-08-31", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_orders":7`)
	sales.AssertExpectations(t)
}

func TestReportSales_MissingRange(t *testing.T) {
	r, _ := newReportRouter(new(MockSalesReportRepository), new(MockInventoryReportRepository), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/sales", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestReportSales_InvertedRange(t *testing.T) {
	r, _ := newReportRouter(new(MockSalesReportRepository), new(MockInventoryReportRepository), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/reports/sales?start_date=2026-08-31&end_date=2026-08-01", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportInventory_UsesSessionBranch(t *testing.T) {
	inv := new(MockInventoryReportRepository)
	branchID := uuid.New()
	r, orgID := newReportRouter(new(MockSalesReportRepository), inv, &branchID)

	filter := report.ValuationFilter{OrgID: orgID, BranchID: &branchID}
	inv.On("ValuationSummary", mock.Anything, filter).Return(&report.ValuationSummary{TotalProducts: 3}, nil)
	inv.On("Valuation", mock.Anything, filter).Return([]report.ValuationLine{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/inventory", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	inv.AssertExpectations(t)
}
