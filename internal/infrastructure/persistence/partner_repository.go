package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByIDForOrg finds a supplier by ID within an org
func (r *GormSupplierRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll finds all suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	query := applyPartnerFilter(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter, true)
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// FindAllForOrg finds all suppliers for an org
func (r *GormSupplierRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	query := applyPartnerFilter(
		r.db.WithContext(ctx).Model(&partner.Supplier{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete deletes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerFilter(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts suppliers for an org
func (r *GormSupplierRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerFilter(
		r.db.WithContext(ctx).Model(&partner.Supplier{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByIDForOrg finds a customer by ID within an org
func (r *GormCustomerRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := applyPartnerFilter(r.db.WithContext(ctx).Model(&partner.Customer{}), filter, true)
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAllForOrg finds all customers for an org
func (r *GormCustomerRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := applyPartnerFilter(
		r.db.WithContext(ctx).Model(&partner.Customer{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete deletes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerFilter(r.db.WithContext(ctx).Model(&partner.Customer{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts customers for an org
func (r *GormCustomerRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerFilter(
		r.db.WithContext(ctx).Model(&partner.Customer{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// applyPartnerFilter is shared between suppliers and customers, which carry
// the same contact columns
func applyPartnerFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PartnerSortFields, "name")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}
