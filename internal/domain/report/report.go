package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary is aggregated sales over a period. Only shipped and completed
// orders count; drafts and cancellations never appear in reports.
type SalesSummary struct {
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TotalOrders   int64           `json:"total_orders"`
	TotalItems    decimal.Decimal `json:"total_items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// DailySales is one day of the sales trend
type DailySales struct {
	Date        time.Time       `json:"date"`
	OrderCount  int64           `json:"order_count"`
	ItemsSold   decimal.Decimal `json:"items_sold"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ValuationLine is one product's stock value at a branch (on-hand x cost)
type ValuationLine struct {
	BranchID    uuid.UUID       `json:"branch_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	OnHand      decimal.Decimal `json:"on_hand"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ValuationSummary is the aggregated stock value
type ValuationSummary struct {
	TotalProducts   int64           `json:"total_products"`
	TotalOnHand     decimal.Decimal `json:"total_on_hand"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
}

// LowStockLine is one stock level at or below its minimum, with product
// details joined in for display
type LowStockLine struct {
	BranchID    uuid.UUID       `json:"branch_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// SalesFilter scopes sales reports to an org, optional branch and date range
type SalesFilter struct {
	OrgID     uuid.UUID
	BranchID  *uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// ValuationFilter scopes inventory reports to an org and optional branch
type ValuationFilter struct {
	OrgID    uuid.UUID
	BranchID *uuid.UUID
}

// SalesReportRepository runs read-only sales aggregations
type SalesReportRepository interface {
	Summary(ctx context.Context, filter SalesFilter) (*SalesSummary, error)
	DailyTrend(ctx context.Context, filter SalesFilter) ([]DailySales, error)
}

// InventoryReportRepository runs read-only inventory aggregations
type InventoryReportRepository interface {
	Valuation(ctx context.Context, filter ValuationFilter) ([]ValuationLine, error)
	ValuationSummary(ctx context.Context, filter ValuationFilter) (*ValuationSummary, error)
	LowStock(ctx context.Context, filter ValuationFilter) ([]LowStockLine, error)
}
