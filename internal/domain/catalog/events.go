package catalog

import (
	"github.com/stockflows/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "Category"
	AggregateTypeProduct  = "Product"
)

// Catalog domain event types
const (
	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeCategoryUpdated = "CategoryUpdated"
	EventTypeCategoryMoved   = "CategoryMoved"
	EventTypeProductCreated  = "ProductCreated"
)

// CategoryCreatedEvent is published when a category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, c.ID, c.OrgID),
		Name:            c.Name,
		Slug:            c.Slug,
	}
}

// CategoryUpdatedEvent is published when a category is updated
type CategoryUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCategoryUpdatedEvent creates a new CategoryUpdatedEvent
func NewCategoryUpdatedEvent(c *Category) *CategoryUpdatedEvent {
	return &CategoryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryUpdated, AggregateTypeCategory, c.ID, c.OrgID),
		Name:            c.Name,
	}
}

// CategoryMovedEvent is published when a category is reparented
type CategoryMovedEvent struct {
	shared.BaseDomainEvent
	Path string `json:"path"`
}

// NewCategoryMovedEvent creates a new CategoryMovedEvent
func NewCategoryMovedEvent(c *Category) *CategoryMovedEvent {
	return &CategoryMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryMoved, AggregateTypeCategory, c.ID, c.OrgID),
		Path:            c.Path,
	}
}

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.OrgID),
		SKU:             p.SKU,
		Name:            p.Name,
	}
}
