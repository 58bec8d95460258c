package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrgRepository implements OrgRepository using GORM
type GormOrgRepository struct {
	db *gorm.DB
}

// NewGormOrgRepository creates a new GormOrgRepository
func NewGormOrgRepository(db *gorm.DB) *GormOrgRepository {
	return &GormOrgRepository{db: db}
}

// FindByID finds an org by its ID
func (r *GormOrgRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Org, error) {
	var org identity.Org
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindByCode finds an org by its unique code
func (r *GormOrgRepository) FindByCode(ctx context.Context, code string) (*identity.Org, error) {
	var org identity.Org
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindAll finds all orgs matching the filter
func (r *GormOrgRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Org, error) {
	var orgs []identity.Org
	query := r.db.WithContext(ctx).Model(&identity.Org{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Save creates or updates an org
func (r *GormOrgRepository) Save(ctx context.Context, org *identity.Org) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// Delete deletes an org
func (r *GormOrgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Org{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts orgs matching the filter
func (r *GormOrgRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&identity.Org{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ identity.OrgRepository = (*GormOrgRepository)(nil)

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by its ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	var branch identity.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindByIDForOrg finds a branch by ID within an org
func (r *GormBranchRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*identity.Branch, error) {
	var branch identity.Branch
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindByCodeForOrg finds a branch by its code within an org
func (r *GormBranchRepository) FindByCodeForOrg(ctx context.Context, orgID uuid.UUID, code string) (*identity.Branch, error) {
	var branch identity.Branch
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, strings.ToUpper(code)).
		First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindAll finds all branches matching the filter
func (r *GormBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Branch, error) {
	var branches []identity.Branch
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.Branch{}), filter)
	if err := query.Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// FindAllForOrg finds all branches for an org
func (r *GormBranchRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]identity.Branch, error) {
	var branches []identity.Branch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&identity.Branch{}).Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// Delete deletes a branch
func (r *GormBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Branch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts branches matching the filter
func (r *GormBranchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&identity.Branch{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts branches for an org
func (r *GormBranchRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&identity.Branch{}).Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBranchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormBranchRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}
	return query
}

var _ identity.BranchRepository = (*GormBranchRepository)(nil)
