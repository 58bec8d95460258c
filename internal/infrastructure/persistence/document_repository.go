package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/document"
	"github.com/stockflows/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForOrg finds a document by ID within an org
func (r *GormDocumentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindBySource returns the stored document of a type for a source order
func (r *GormDocumentRepository) FindBySource(ctx context.Context, orgID uuid.UUID, docType document.DocumentType, sourceID uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND type = ? AND source_id = ?", orgID, docType, sourceID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAll finds all documents matching the filter
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.Document{}), filter, true)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAllForOrg finds all documents for an org
func (r *GormDocumentRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// Delete deletes a document
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.Document{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForOrg counts documents for an org
func (r *GormDocumentRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("source_number ILIKE ?", "%"+filter.Search+"%")
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "rendered_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ document.DocumentRepository = (*GormDocumentRepository)(nil)
