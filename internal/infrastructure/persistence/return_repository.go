package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormReturnRepository implements ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// FindByID finds a return request with its items
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ReturnRequest, error) {
	var ret trade.ReturnRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&ret, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindByIDForOrg finds a return request by ID within an org
func (r *GormReturnRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.ReturnRequest, error) {
	var ret trade.ReturnRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&ret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindOpenBySource returns the non-cancelled, non-rejected returns filed
// against a source document, items preloaded. Used to compute the remaining
// returnable quantity per line.
func (r *GormReturnRepository) FindOpenBySource(ctx context.Context, orgID, sourceID uuid.UUID) ([]trade.ReturnRequest, error) {
	var returns []trade.ReturnRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND source_id = ? AND status NOT IN ?",
			orgID, sourceID, []trade.ReturnStatus{trade.ReturnStatusCancelled, trade.ReturnStatusRejected}).
		Order("created_at ASC").
		Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// FindAll finds all return requests matching the filter
func (r *GormReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.ReturnRequest, error) {
	var returns []trade.ReturnRequest
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.ReturnRequest{}), filter, true)
	if err := query.Preload("Items").Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// FindAllForOrg finds all return requests for an org
func (r *GormReturnRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.ReturnRequest, error) {
	var returns []trade.ReturnRequest
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trade.ReturnRequest{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Preload("Items").Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// Save persists the return request and its items atomically
func (r *GormReturnRepository) Save(ctx context.Context, ret *trade.ReturnRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(ret).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(ret.Items))
		for i := range ret.Items {
			keep = append(keep, ret.Items[i].ID)
		}
		itemQuery := tx.Where("return_id = ?", ret.ID)
		if len(keep) > 0 {
			itemQuery = itemQuery.Where("id NOT IN ?", keep)
		}
		if err := itemQuery.Delete(&trade.ReturnItem{}).Error; err != nil {
			return err
		}

		for i := range ret.Items {
			if err := tx.Save(&ret.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a return request with its items
func (r *GormReturnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("return_id = ?", id).Delete(&trade.ReturnItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&trade.ReturnRequest{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts return requests matching the filter
func (r *GormReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.ReturnRequest{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts return requests for an org
func (r *GormReturnRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trade.ReturnRequest{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextReturnNumber allocates the next sequential return number for the org.
// Format: RET-YYYYMM-NNNN, sequence resets monthly.
func (r *GormReturnRepository) NextReturnNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &trade.ReturnRequest{}, orgID, "RET", "return_number")
}

func (r *GormReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("return_number ILIKE ? OR source_number ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		}
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ReturnSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ trade.ReturnRepository = (*GormReturnRepository)(nil)
