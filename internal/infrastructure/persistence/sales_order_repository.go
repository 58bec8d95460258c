package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForOrg finds a sales order by ID within an org
func (r *GormSalesOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumberForOrg finds a sales order by its order number within an org
func (r *GormSalesOrderRepository) FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND order_number = ?", orgID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all sales orders matching the filter
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, error) {
	var orders []trade.SalesOrder
	query := applyOrderFilter(r.db.WithContext(ctx).Model(&trade.SalesOrder{}), filter, true)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAllForOrg finds all sales orders for an org
func (r *GormSalesOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.SalesOrder, error) {
	var orders []trade.SalesOrder
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&trade.SalesOrder{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order and its lines atomically
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(order.Items))
		for i := range order.Items {
			keep = append(keep, order.Items[i].ID)
		}
		itemQuery := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			itemQuery = itemQuery.Where("id NOT IN ?", keep)
		}
		if err := itemQuery.Delete(&trade.SalesOrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a sales order with its items
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&trade.SalesOrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&trade.SalesOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts sales orders matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyOrderFilter(r.db.WithContext(ctx).Model(&trade.SalesOrder{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts sales orders for an org
func (r *GormSalesOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&trade.SalesOrder{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextOrderNumber allocates the next sequential order number for the org.
// Format: SO-YYYYMM-NNNN, sequence resets monthly.
func (r *GormSalesOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &trade.SalesOrder{}, orgID, "SO", "order_number")
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
