package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormSalesReportRepository implements SalesReportRepository using GORM
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// reportableStatuses are the order states that count towards sales figures
var reportableStatuses = []string{"SHIPPED", "COMPLETED"}

// Summary returns aggregated sales for the period
func (r *GormSalesReportRepository) Summary(ctx context.Context, filter report.SalesFilter) (*report.SalesSummary, error) {
	type row struct {
		TotalOrders int64
		TotalItems  decimal.Decimal
		TotalAmount decimal.Decimal
	}

	var result row
	query := r.db.WithContext(ctx).Table("sales_orders so").
		Select(`
			COUNT(DISTINCT so.id) as total_orders,
			COALESCE(SUM(soi.qty), 0) as total_items,
			COALESCE(SUM(soi.line_total), 0) as total_amount
		`).
		Joins("JOIN sales_order_items soi ON soi.order_id = so.id").
		Where("so.org_id = ?", filter.OrgID).
		Where("so.status IN ?", reportableStatuses).
		Where("so.created_at >= ? AND so.created_at < ?", filter.StartDate, filter.EndDate)
	if filter.BranchID != nil {
		query = query.Where("so.branch_id = ?", *filter.BranchID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if result.TotalOrders > 0 {
		avg = result.TotalAmount.DivRound(decimal.NewFromInt(result.TotalOrders), 4)
	}
	return &report.SalesSummary{
		PeriodStart:   filter.StartDate,
		PeriodEnd:     filter.EndDate,
		TotalOrders:   result.TotalOrders,
		TotalItems:    result.TotalItems,
		TotalAmount:   result.TotalAmount,
		AvgOrderValue: avg,
	}, nil
}

// DailyTrend returns per-day totals over the period, ascending by date
func (r *GormSalesReportRepository) DailyTrend(ctx context.Context, filter report.SalesFilter) ([]report.DailySales, error) {
	var results []report.DailySales
	query := r.db.WithContext(ctx).Table("sales_orders so").
		Select(`
			DATE(so.created_at) as date,
			COUNT(DISTINCT so.id) as order_count,
			COALESCE(SUM(soi.qty), 0) as items_sold,
			COALESCE(SUM(soi.line_total), 0) as total_amount
		`).
		Joins("JOIN sales_order_items soi ON soi.order_id = so.id").
		Where("so.org_id = ?", filter.OrgID).
		Where("so.status IN ?", reportableStatuses).
		Where("so.created_at >= ? AND so.created_at < ?", filter.StartDate, filter.EndDate).
		Group("DATE(so.created_at)").
		Order("date ASC")
	if filter.BranchID != nil {
		query = query.Where("so.branch_id = ?", *filter.BranchID)
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GormInventoryReportRepository implements InventoryReportRepository using GORM
type GormInventoryReportRepository struct {
	db *gorm.DB
}

// NewGormInventoryReportRepository creates a new GormInventoryReportRepository
func NewGormInventoryReportRepository(db *gorm.DB) *GormInventoryReportRepository {
	return &GormInventoryReportRepository{db: db}
}

// Valuation returns per-product stock value (on-hand x product cost),
// largest value first
func (r *GormInventoryReportRepository) Valuation(ctx context.Context, filter report.ValuationFilter) ([]report.ValuationLine, error) {
	var results []report.ValuationLine
	query := r.db.WithContext(ctx).Table("stock_levels sl").
		Select(`
			sl.branch_id,
			sl.product_id,
			p.sku as product_sku,
			p.name as product_name,
			sl.on_hand,
			p.cost as unit_cost,
			(sl.on_hand * p.cost) as total_value
		`).
		Joins("JOIN products p ON p.id = sl.product_id").
		Where("sl.org_id = ?", filter.OrgID).
		Order("total_value DESC")
	if filter.BranchID != nil {
		query = query.Where("sl.branch_id = ?", *filter.BranchID)
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ValuationSummary returns the aggregated stock value for the org
func (r *GormInventoryReportRepository) ValuationSummary(ctx context.Context, filter report.ValuationFilter) (*report.ValuationSummary, error) {
	type row struct {
		TotalProducts   int64
		TotalOnHand     decimal.Decimal
		TotalValue      decimal.Decimal
		LowStockCount   int64
		OutOfStockCount int64
	}

	var result row
	query := r.db.WithContext(ctx).Table("stock_levels sl").
		Select(`
			COUNT(DISTINCT sl.product_id) as total_products,
			COALESCE(SUM(sl.on_hand), 0) as total_on_hand,
			COALESCE(SUM(sl.on_hand * p.cost), 0) as total_value,
			SUM(CASE WHEN sl.min_stock > 0 AND sl.on_hand <= sl.min_stock THEN 1 ELSE 0 END) as low_stock_count,
			SUM(CASE WHEN sl.on_hand <= 0 THEN 1 ELSE 0 END) as out_of_stock_count
		`).
		Joins("JOIN products p ON p.id = sl.product_id").
		Where("sl.org_id = ?", filter.OrgID)
	if filter.BranchID != nil {
		query = query.Where("sl.branch_id = ?", *filter.BranchID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	return &report.ValuationSummary{
		TotalProducts:   result.TotalProducts,
		TotalOnHand:     result.TotalOnHand,
		TotalValue:      result.TotalValue,
		LowStockCount:   result.LowStockCount,
		OutOfStockCount: result.OutOfStockCount,
	}, nil
}

// LowStock returns levels at or below their threshold with product details
func (r *GormInventoryReportRepository) LowStock(ctx context.Context, filter report.ValuationFilter) ([]report.LowStockLine, error) {
	var results []report.LowStockLine
	query := r.db.WithContext(ctx).Table("stock_levels sl").
		Select(`
			sl.branch_id,
			sl.product_id,
			p.sku as product_sku,
			p.name as product_name,
			sl.on_hand,
			sl.reserved,
			sl.min_stock
		`).
		Joins("JOIN products p ON p.id = sl.product_id").
		Where("sl.org_id = ? AND sl.min_stock > 0 AND sl.on_hand <= sl.min_stock", filter.OrgID).
		Order("sl.on_hand ASC")
	if filter.BranchID != nil {
		query = query.Where("sl.branch_id = ?", *filter.BranchID)
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
