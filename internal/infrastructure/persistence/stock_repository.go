package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByID finds a stock level by its ID
func (r *GormStockLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByIDForOrg finds a stock level by ID within an org
func (r *GormStockLevelRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByBranchProduct returns the stock record for a branch/product pair
func (r *GormStockLevelRepository) FindByBranchProduct(ctx context.Context, orgID, branchID, productID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND branch_id = ? AND product_id = ?", orgID, branchID, productID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByBranch finds stock levels in a branch
func (r *GormStockLevelRepository) FindByBranch(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("org_id = ? AND branch_id = ?", orgID, branchID),
		filter, true,
	)
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindLowStock returns levels with a threshold set and on-hand at or below it
func (r *GormStockLevelRepository) FindLowStock(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID) ([]inventory.StockLevel, error) {
	query := r.db.WithContext(ctx).
		Where("org_id = ? AND min_stock > 0 AND on_hand <= min_stock", orgID)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}

	var levels []inventory.StockLevel
	if err := query.Order("on_hand ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindAll finds all stock levels matching the filter
func (r *GormStockLevelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockLevel{}), filter, true)
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindAllForOrg finds all stock levels for an org
func (r *GormStockLevelRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Save creates or updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock persists the level with an optimistic version check
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, level.Version-1).
		Updates(map[string]interface{}{
			"on_hand":      level.OnHand,
			"reserved":     level.Reserved,
			"min_stock":    level.MinStock,
			"bin_location": level.BinLocation,
			"version":      level.Version,
			"updated_at":   level.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a stock level
func (r *GormStockLevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.StockLevel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts stock levels matching the filter
func (r *GormStockLevelRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockLevel{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts stock levels for an org
func (r *GormStockLevelRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockLevelRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		}
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, StockLevelSortFields, "updated_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append writes a movement to the journal. Movements are never updated.
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProduct returns the movement history for a product, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, orgID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("org_id = ? AND product_id = ?", orgID, productID),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountByProduct counts the movements recorded for a product
func (r *GormStockMovementRepository) CountByProduct(ctx context.Context, orgID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("org_id = ? AND product_id = ?", orgID, productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByBranch returns the movement history for a branch, newest first
func (r *GormStockMovementRepository) FindByBranch(ctx context.Context, orgID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("org_id = ? AND branch_id = ?", orgID, branchID),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *GormStockMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "since":
			query = query.Where("created_at >= ?", value)
		case "until":
			query = query.Where("created_at < ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
