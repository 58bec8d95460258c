package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByIDForOrg finds a category by ID within an org
func (r *GormCategoryRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindBySlugForOrg finds a category by its slug within an org
func (r *GormCategoryRepository) FindBySlugForOrg(ctx context.Context, orgID uuid.UUID, slug string) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND slug = ?", orgID, strings.ToLower(slug)).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Category{}), filter)
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindAllForOrg finds all categories for an org
func (r *GormCategoryRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Category{}).Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren finds the direct children of a category, ordered for display
func (r *GormCategoryRepository) FindChildren(ctx context.Context, orgID, parentID uuid.UUID) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND parent_id = ?", orgID, parentID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendants finds every category whose materialized path is under the given one
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, orgID uuid.UUID, path string) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND path LIKE ?", orgID, path+"/%").
		Order("level ASC, sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountChildren counts the direct children of a category
func (r *GormCategoryRepository) CountChildren(ctx context.Context, orgID, parentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("org_id = ? AND parent_id = ?", orgID, parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ProductCounts returns the number of products per category for an org
func (r *GormCategoryRepository) ProductCounts(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		CategoryID uuid.UUID
		Count      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("org_id = ? AND category_id IS NOT NULL", orgID).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// SaveAll persists a batch of categories in one transaction,
// used when a subtree move rewrites descendant paths
func (r *GormCategoryRepository) SaveAll(ctx context.Context, categories []*catalog.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, category := range categories {
			if err := tx.Save(category).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Category{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts categories for an org
func (r *GormCategoryRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&catalog.Category{}).Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CategorySortFields, "sort_order")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormCategoryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "parent_id":
			if value == nil {
				query = query.Where("parent_id IS NULL")
			} else {
				query = query.Where("parent_id = ?", value)
			}
		case "level":
			query = query.Where("level = ?", value)
		}
	}

	return query
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
