package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
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

// FindByIDForOrg finds a purchase order by ID within an org
func (r *GormPurchaseOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
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

// FindByNumberForOrg finds a purchase order by its order number within an org
func (r *GormPurchaseOrderRepository) FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
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

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	query := applyOrderFilter(r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}), filter, true)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAllForOrg finds all purchase orders for an org
func (r *GormPurchaseOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order and its lines atomically. Removed lines are
// deleted so the stored set always mirrors the aggregate.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
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
		if err := itemQuery.Delete(&trade.PurchaseOrderItem{}).Error; err != nil {
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

// Delete deletes a purchase order with its items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&trade.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&trade.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyOrderFilter(r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts purchase orders for an org
func (r *GormPurchaseOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextOrderNumber allocates the next sequential order number for the org.
// Format: PO-YYYYMM-NNNN, sequence resets monthly.
func (r *GormPurchaseOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &trade.PurchaseOrder{}, orgID, "PO", "order_number")
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

// applyOrderFilter is shared by purchase and sales order queries
func applyOrderFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ?", pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "submitted_after":
			query = query.Where("submitted_at >= ?", value)
		case "submitted_before":
			query = query.Where("submitted_at < ?", value)
		}
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// nextDocumentNumber allocates the next number in a per-org monthly sequence,
// format <PREFIX>-YYYYMM-NNNN. A lost race surfaces later as a unique
// constraint violation on the number column, which callers retry.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model any, orgID uuid.UUID, prefix, column string) (string, error) {
	period := time.Now().Format("200601")
	numberPrefix := fmt.Sprintf("%s-%s-", prefix, period)

	var last string
	err := db.WithContext(ctx).
		Model(model).
		Select(column).
		Where("org_id = ? AND "+column+" LIKE ?", orgID, numberPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				next = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", numberPrefix, next), nil
}
