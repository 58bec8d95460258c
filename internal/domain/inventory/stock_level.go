package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// StockLevel is the on-hand stock of one product at one branch. The composite
// identifier is BranchID + ProductID within an org.
type StockLevel struct {
	shared.OrgAggregateRoot
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_branch_product,priority:1"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_branch_product,priority:2"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // committed to open orders
	MinStock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // low-stock threshold
	BinLocation string          `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates an empty stock record for a branch-product pair
func NewStockLevel(orgID, branchID, productID uuid.UUID) (*StockLevel, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockLevel{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		BranchID:         branchID,
		ProductID:        productID,
		OnHand:           decimal.Zero,
		Reserved:         decimal.Zero,
		MinStock:         decimal.Zero,
	}, nil
}

// Available returns the quantity free to promise
func (s *StockLevel) Available() decimal.Decimal {
	avail := s.OnHand.Sub(s.Reserved)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// Increase adds quantity to on-hand stock
func (s *StockLevel) Increase(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.OnHand = s.OnHand.Add(qty)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Decrease removes quantity from on-hand stock. On-hand never goes negative.
func (s *StockLevel) Decrease(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.OnHand.LessThan(qty) {
		return shared.ErrInsufficientStock
	}
	s.OnHand = s.OnHand.Sub(qty)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Reserve commits available stock to an order
func (s *StockLevel) Reserve(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Available().LessThan(qty) {
		return shared.ErrInsufficientStock
	}
	s.Reserved = s.Reserved.Add(qty)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Release frees a reservation without shipping it
func (s *StockLevel) Release(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Reserved.LessThan(qty) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than is reserved")
	}
	s.Reserved = s.Reserved.Sub(qty)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetMinStock sets the low-stock threshold
func (s *StockLevel) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	s.MinStock = minStock
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetBinLocation records where the product is shelved at the branch
func (s *StockLevel) SetBinLocation(bin string) error {
	if len(bin) > 50 {
		return shared.NewDomainError("INVALID_BIN", "Bin location cannot exceed 50 characters")
	}
	s.BinLocation = bin
	s.UpdatedAt = time.Now()
	return nil
}

// IsLow reports whether on-hand stock is at or below the threshold
func (s *StockLevel) IsLow() bool {
	return s.MinStock.IsPositive() && s.OnHand.LessThanOrEqual(s.MinStock)
}
