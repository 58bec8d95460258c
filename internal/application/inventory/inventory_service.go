package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxLockRetries bounds the read-modify-write retries on version conflicts
const maxLockRetries = 3

// LevelCache caches branch stock listings. A nil cache disables caching.
type LevelCache interface {
	GetBranchLevels(ctx context.Context, orgID, branchID uuid.UUID) ([]inventory.StockLevel, error)
	SetBranchLevels(ctx context.Context, orgID, branchID uuid.UUID, levels []inventory.StockLevel) error
	InvalidateBranch(ctx context.Context, orgID, branchID uuid.UUID) error
}

// InventoryService owns all stock mutations. Every change goes through a
// movement so the journal stays the complete history of on-hand quantities.
type InventoryService struct {
	levelRepo    inventory.StockLevelRepository
	movementRepo inventory.StockMovementRepository
	cache        LevelCache
	logger       *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	levelRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
	cache LevelCache,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		cache:        cache,
		logger:       logger,
	}
}

// IncreaseStock adds quantity for a branch/product pair and appends a
// movement. The stock record is created on first receipt.
func (s *InventoryService) IncreaseStock(ctx context.Context, orgID uuid.UUID, req StockChangeRequest) (*StockMovementResponse, error) {
	if !req.Type.IsInbound() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type does not add stock")
	}
	return s.applyChange(ctx, orgID, req, func(level *inventory.StockLevel) error {
		return level.Increase(req.Qty)
	})
}

// DecreaseStock removes quantity for a branch/product pair and appends a
// movement. Returns shared.ErrInsufficientStock when on-hand would go negative.
func (s *InventoryService) DecreaseStock(ctx context.Context, orgID uuid.UUID, req StockChangeRequest) (*StockMovementResponse, error) {
	if req.Type.IsInbound() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type does not remove stock")
	}
	return s.applyChange(ctx, orgID, req, func(level *inventory.StockLevel) error {
		return level.Decrease(req.Qty)
	})
}

// AdjustStock records a manual correction. Positive deltas add stock,
// negative deltas remove it; a zero delta is rejected.
func (s *InventoryService) AdjustStock(ctx context.Context, orgID, actorID uuid.UUID, req AdjustStockRequest) (*StockMovementResponse, error) {
	if req.Delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	change := StockChangeRequest{
		BranchID:      req.BranchID,
		ProductID:     req.ProductID,
		ReferenceType: inventory.ReferenceTypeManual,
		Reason:        req.Reason,
		ActorID:       actorID,
	}
	if req.Delta.IsPositive() {
		change.Qty = req.Delta
		change.Type = inventory.MovementTypeAdjustmentIn
		return s.IncreaseStock(ctx, orgID, change)
	}
	change.Qty = req.Delta.Neg()
	change.Type = inventory.MovementTypeAdjustmentOut
	return s.DecreaseStock(ctx, orgID, change)
}

// applyChange runs one read-modify-write cycle against a stock level,
// retrying when a concurrent writer bumped the version first.
func (s *InventoryService) applyChange(ctx context.Context, orgID uuid.UUID, req StockChangeRequest, mutate func(*inventory.StockLevel) error) (*StockMovementResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxLockRetries; attempt++ {
		level, created, err := s.findOrCreateLevel(ctx, orgID, req.BranchID, req.ProductID)
		if err != nil {
			return nil, err
		}

		previous := level.OnHand
		if err := mutate(level); err != nil {
			return nil, err
		}

		if created {
			err = s.levelRepo.Save(ctx, level)
		} else {
			err = s.levelRepo.SaveWithLock(ctx, level)
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) || (created && errors.Is(err, shared.ErrAlreadyExists)) {
			lastErr = err
			s.logger.Debug("stock level version conflict, retrying",
				zap.String("product_id", req.ProductID.String()),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		movement, err := inventory.NewStockMovement(level, req.Type, req.Qty, previous,
			req.ReferenceType, req.ReferenceID, req.ReferenceNumber, req.Reason, req.ActorID)
		if err != nil {
			return nil, err
		}
		if err := s.movementRepo.Append(ctx, movement); err != nil {
			return nil, err
		}

		s.invalidate(ctx, orgID, req.BranchID)
		resp := ToStockMovementResponse(movement)
		return &resp, nil
	}
	return nil, lastErr
}

func (s *InventoryService) findOrCreateLevel(ctx context.Context, orgID, branchID, productID uuid.UUID) (*inventory.StockLevel, bool, error) {
	level, err := s.levelRepo.FindByBranchProduct(ctx, orgID, branchID, productID)
	if err == nil {
		return level, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}
	level, err = inventory.NewStockLevel(orgID, branchID, productID)
	if err != nil {
		return nil, false, err
	}
	return level, true, nil
}

func (s *InventoryService) invalidate(ctx context.Context, orgID, branchID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBranch(ctx, orgID, branchID); err != nil {
		s.logger.Warn("failed to invalidate stock cache",
			zap.String("branch_id", branchID.String()), zap.Error(err))
	}
}

// GetLevel returns the stock record for a branch/product pair. A pair that
// has never moved reads as a zero level rather than an error.
func (s *InventoryService) GetLevel(ctx context.Context, orgID, branchID, productID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.levelRepo.FindByBranchProduct(ctx, orgID, branchID, productID)
	if errors.Is(err, shared.ErrNotFound) {
		level, err = inventory.NewStockLevel(orgID, branchID, productID)
	}
	if err != nil {
		return nil, err
	}
	resp := ToStockLevelResponse(level)
	return &resp, nil
}

// ListBranchLevels returns the stock levels at a branch. Unfiltered first
// pages are served from the cache when one is configured.
func (s *InventoryService) ListBranchLevels(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, error) {
	cacheable := s.cache != nil && filter.Search == "" && len(filter.Filters) == 0 && filter.Page <= 1

	if cacheable {
		if levels, err := s.cache.GetBranchLevels(ctx, orgID, branchID); err == nil && levels != nil {
			return ToStockLevelResponses(levels), nil
		}
	}

	levels, err := s.levelRepo.FindByBranch(ctx, orgID, branchID, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetBranchLevels(ctx, orgID, branchID, levels); err != nil {
			s.logger.Warn("failed to populate stock cache",
				zap.String("branch_id", branchID.String()), zap.Error(err))
		}
	}
	return ToStockLevelResponses(levels), nil
}

// ListLowStock returns all levels at or below their minimum threshold,
// optionally limited to one branch
func (s *InventoryService) ListLowStock(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.levelRepo.FindLowStock(ctx, orgID, branchID)
	if err != nil {
		return nil, err
	}
	return ToStockLevelResponses(levels), nil
}

// ListProductMovements returns the paginated movement history of a product
func (s *InventoryService) ListProductMovements(ctx context.Context, orgID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockMovementResponse], error) {
	movements, err := s.movementRepo.FindByProduct(ctx, orgID, productID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountByProduct(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToStockMovementResponses(movements), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListBranchMovements returns the movement history of a branch
func (s *InventoryService) ListBranchMovements(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]StockMovementResponse, error) {
	movements, err := s.movementRepo.FindByBranch(ctx, orgID, branchID, filter)
	if err != nil {
		return nil, err
	}
	return ToStockMovementResponses(movements), nil
}

// SetMinStock updates the low-stock threshold for a branch/product pair,
// creating the stock record when none exists
func (s *InventoryService) SetMinStock(ctx context.Context, orgID uuid.UUID, req SetMinStockRequest) (*StockLevelResponse, error) {
	level, created, err := s.findOrCreateLevel(ctx, orgID, req.BranchID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := level.SetMinStock(req.MinStock); err != nil {
		return nil, err
	}
	if created {
		err = s.levelRepo.Save(ctx, level)
	} else {
		err = s.levelRepo.SaveWithLock(ctx, level)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orgID, req.BranchID)
	resp := ToStockLevelResponse(level)
	return &resp, nil
}

// SetBinLocation records where a product is shelved at a branch
func (s *InventoryService) SetBinLocation(ctx context.Context, orgID, branchID, productID uuid.UUID, bin string) (*StockLevelResponse, error) {
	level, created, err := s.findOrCreateLevel(ctx, orgID, branchID, productID)
	if err != nil {
		return nil, err
	}
	if err := level.SetBinLocation(bin); err != nil {
		return nil, err
	}
	if created {
		err = s.levelRepo.Save(ctx, level)
	} else {
		err = s.levelRepo.SaveWithLock(ctx, level)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orgID, branchID)
	resp := ToStockLevelResponse(level)
	return &resp, nil
}

// TotalOnHand sums a product's on-hand quantity across all branches
func (s *InventoryService) TotalOnHand(ctx context.Context, orgID, productID uuid.UUID) (decimal.Decimal, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 10000
	filter.Filters = map[string]interface{}{"product_id": productID}

	levels, err := s.levelRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range levels {
		total = total.Add(levels[i].OnHand)
	}
	return total, nil
}
