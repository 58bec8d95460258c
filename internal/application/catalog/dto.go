package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	Slug     string     `json:"slug" binding:"omitempty,max=120"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Slug string `json:"slug" binding:"omitempty,max=120"`
}

// MoveCategoryRequest reparents a category. A nil parent makes it a root.
type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// ReorderCategoriesRequest sets the display order of the siblings under one
// parent. IDs not listed keep their current order after the listed ones.
type ReorderCategoriesRequest struct {
	ParentID   *uuid.UUID  `json:"parent_id"`
	OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required,min=1"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Path      string     `json:"path"`
	Level     int        `json:"level"`
	SortOrder int        `json:"sort_order"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to its API shape
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		Path:      c.Path,
		Level:     c.Level,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=5000"`
	Barcode     string          `json:"barcode" binding:"omitempty,max=50"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	MinStock    decimal.Decimal `json:"min_stock"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=5000"`
	Barcode     string          `json:"barcode" binding:"omitempty,max=50"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	MinStock    decimal.Decimal `json:"min_stock"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
}

// ProductListFilter represents filter options for listing products
type ProductListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive discontinued"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	MinStock    decimal.Decimal `json:"min_stock"`
	ImageKey    string          `json:"image_key,omitempty"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to its API shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Cost:        p.Cost,
		MinStock:    p.MinStock,
		ImageKey:    p.ImageKey,
		WeightKg:    p.WeightKg,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
