package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	shared.OrgRepository[Category]
	FindBySlugForOrg(ctx context.Context, orgID uuid.UUID, slug string) (*Category, error)
	FindChildren(ctx context.Context, orgID, parentID uuid.UUID) ([]Category, error)
	// FindDescendants returns every category whose path is under the given one
	FindDescendants(ctx context.Context, orgID uuid.UUID, path string) ([]Category, error)
	CountChildren(ctx context.Context, orgID, parentID uuid.UUID) (int64, error)
	// ProductCounts returns the number of products per category for an org
	ProductCounts(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]int64, error)
	SaveAll(ctx context.Context, categories []*Category) error
}

// ProductRepository persists products
type ProductRepository interface {
	shared.OrgRepository[Product]
	FindBySKUForOrg(ctx context.Context, orgID uuid.UUID, sku string) (*Product, error)
	FindByCategory(ctx context.Context, orgID, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error)
}
