package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/report"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func TestSalesReport(t *testing.T) {
	salesRepo := new(MockSalesReportRepository)
	service := NewReportService(salesRepo, new(MockInventoryReportRepository), nil)

	orgID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	summary := &report.SalesSummary{
		TotalOrders: 12,
		TotalAmount: decimal.NewFromInt(2400),
	}
	daily := []report.DailySales{
		{Date: start, OrderCount: 3, TotalAmount: decimal.NewFromInt(600)},
	}

	// the inclusive end date becomes a half-open bound on the next day
	expected := report.SalesFilter{
		OrgID:     orgID,
		StartDate: start,
		EndDate:   end.AddDate(0, 0, 1),
	}
	salesRepo.On("Summary", mock.Anything, expected).Return(summary, nil)
	salesRepo.On("DailyTrend", mock.Anything, expected).Return(daily, nil)

	resp, err := service.SalesReport(context.Background(), orgID, SalesReportQuery{
		StartDate: start,
		EndDate:   end,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Summary.TotalOrders)
	require.Len(t, resp.Daily, 1)
	salesRepo.AssertExpectations(t)
}

func TestSalesReport_InvalidRange(t *testing.T) {
	service := NewReportService(new(MockSalesReportRepository), new(MockInventoryReportRepository), nil)

	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.SalesReport(context.Background(), uuid.New(), SalesReportQuery{
		StartDate: start,
		EndDate:   end,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_RANGE", domainErr.Code)
}

func TestSalesReport_RangeTooWide(t *testing.T) {
	service := NewReportService(new(MockSalesReportRepository), new(MockInventoryReportRepository), nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.SalesReport(context.Background(), uuid.New(), SalesReportQuery{
		StartDate: start,
		EndDate:   end,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_RANGE", domainErr.Code)
}

func TestInventoryReport(t *testing.T) {
	inventoryRepo := new(MockInventoryReportRepository)
	service := NewReportService(new(MockSalesReportRepository), inventoryRepo, nil)

	orgID := uuid.New()
	branchID := uuid.New()
	filter := report.ValuationFilter{OrgID: orgID, BranchID: &branchID}

	inventoryRepo.On("ValuationSummary", mock.Anything, filter).Return(&report.ValuationSummary{
		TotalProducts: 2,
		TotalValue:    decimal.NewFromInt(500),
	}, nil)
	inventoryRepo.On("Valuation", mock.Anything, filter).Return([]report.ValuationLine{
		{ProductSKU: "WIDGET-01", TotalValue: decimal.NewFromInt(400)},
		{ProductSKU: "GADGET-02", TotalValue: decimal.NewFromInt(100)},
	}, nil)

	resp, err := service.InventoryReport(context.Background(), orgID, InventoryReportQuery{BranchID: &branchID})

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Summary.TotalProducts)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "WIDGET-01", resp.Lines[0].ProductSKU)
}

func TestLowStockReport(t *testing.T) {
	inventoryRepo := new(MockInventoryReportRepository)
	service := NewReportService(new(MockSalesReportRepository), inventoryRepo, nil)

	orgID := uuid.New()
	inventoryRepo.On("LowStock", mock.Anything, report.ValuationFilter{OrgID: orgID}).Return([]report.LowStockLine{
		{ProductSKU: "WIDGET-01", OnHand: decimal.NewFromInt(1), MinStock: decimal.NewFromInt(5)},
	}, nil)

	lines, err := service.LowStockReport(context.Background(), orgID, InventoryReportQuery{})

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].OnHand.LessThanOrEqual(lines[0].MinStock))
}
