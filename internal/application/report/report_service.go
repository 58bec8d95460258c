package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/report"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxReportRange bounds how much history a single report query may scan
const maxReportRange = 366 * 24 * time.Hour

// SalesReportQuery is the request filter for sales reports
type SalesReportQuery struct {
	StartDate time.Time  `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time  `form:"end_date" time_format:"2006-01-02" binding:"required"`
	BranchID  *uuid.UUID `form:"branch_id"`
}

// InventoryReportQuery is the request filter for inventory reports
type InventoryReportQuery struct {
	BranchID *uuid.UUID `form:"branch_id"`
}

// SalesReportResponse bundles the summary with the daily trend
type SalesReportResponse struct {
	Summary report.SalesSummary `json:"summary"`
	Daily   []report.DailySales `json:"daily"`
}

// InventoryReportResponse bundles the valuation summary with its lines
type InventoryReportResponse struct {
	Summary report.ValuationSummary `json:"summary"`
	Lines   []report.ValuationLine  `json:"lines"`
}

// ReportService runs read-only reporting queries
type ReportService struct {
	salesRepo     report.SalesReportRepository
	inventoryRepo report.InventoryReportRepository
	logger        *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(salesRepo report.SalesReportRepository, inventoryRepo report.InventoryReportRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		salesRepo:     salesRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger,
	}
}

// SalesReport returns the sales summary and daily trend for a period. The end
// date is inclusive; internally the range is half-open on the following day.
func (s *ReportService) SalesReport(ctx context.Context, orgID uuid.UUID, query SalesReportQuery) (*SalesReportResponse, error) {
	if query.EndDate.Before(query.StartDate) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End date must not precede start date")
	}
	if query.EndDate.Sub(query.StartDate) > maxReportRange {
		return nil, shared.NewDomainError("INVALID_RANGE", "Report range cannot exceed one year")
	}

	filter := report.SalesFilter{
		OrgID:     orgID,
		BranchID:  query.BranchID,
		StartDate: query.StartDate,
		EndDate:   query.EndDate.AddDate(0, 0, 1),
	}

	summary, err := s.salesRepo.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	daily, err := s.salesRepo.DailyTrend(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &SalesReportResponse{Summary: *summary, Daily: daily}, nil
}

// InventoryReport returns the stock valuation for the org
func (s *ReportService) InventoryReport(ctx context.Context, orgID uuid.UUID, query InventoryReportQuery) (*InventoryReportResponse, error) {
	filter := report.ValuationFilter{OrgID: orgID, BranchID: query.BranchID}

	summary, err := s.inventoryRepo.ValuationSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	lines, err := s.inventoryRepo.Valuation(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &InventoryReportResponse{Summary: *summary, Lines: lines}, nil
}

// LowStockReport lists stock levels at or below their minimum
func (s *ReportService) LowStockReport(ctx context.Context, orgID uuid.UUID, query InventoryReportQuery) ([]report.LowStockLine, error) {
	return s.inventoryRepo.LowStock(ctx, report.ValuationFilter{OrgID: orgID, BranchID: query.BranchID})
}
