package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// StockLevelRepository persists stock levels
type StockLevelRepository interface {
	shared.OrgRepository[StockLevel]
	// FindByBranchProduct returns the stock record for the pair, or
	// shared.ErrNotFound when none exists yet
	FindByBranchProduct(ctx context.Context, orgID, branchID, productID uuid.UUID) (*StockLevel, error)
	FindByBranch(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]StockLevel, error)
	// FindLowStock returns levels at or below their minimum threshold
	FindLowStock(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID) ([]StockLevel, error)
	// SaveWithLock persists the level only if its version has not moved,
	// returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, level *StockLevel) error
}

// StockMovementRepository appends to and queries the movement journal
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindByProduct(ctx context.Context, orgID, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	CountByProduct(ctx context.Context, orgID, productID uuid.UUID) (int64, error)
	FindByBranch(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
}
