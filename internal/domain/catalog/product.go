package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is a sellable SKU in the catalog
type Product struct {
	shared.OrgAggregateRoot
	SKU         string          `gorm:"type:varchar(50);not null;index:idx_products_org_sku,unique"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Barcode     string          `gorm:"type:varchar(50);index"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // selling price
	Cost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // purchase cost
	MinStock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImageKey    string          `gorm:"type:varchar(500)"` // object key in the external file store
	WeightKg    decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(orgID uuid.UUID, sku, name string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	product := &Product{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		SKU:              strings.ToUpper(sku),
		Name:             name,
		Price:            decimal.Zero,
		Cost:             decimal.Zero,
		MinStock:         decimal.Zero,
		WeightKg:         decimal.Zero,
		Status:           ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetPrices sets selling price and cost
func (p *Product) SetPrices(price, cost decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost cannot be negative")
	}

	p.Price = price
	p.Cost = cost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	p.Barcode = barcode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetImageKey records the object key of the product image in the file store
func (p *Product) SetImageKey(key string) {
	p.ImageKey = key
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetMinStock sets the low-stock alert threshold
func (p *Product) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	p.MinStock = minStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetWeight records the unit weight used for shipping estimates
func (p *Product) SetWeight(weightKg decimal.Decimal) error {
	if weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.WeightKg = weightKg
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Discontinue permanently retires the product
func (p *Product) Discontinue() error {
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATE", "Product is already discontinued")
	}
	p.Status = ProductStatusDiscontinued
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive reports whether the product can be sold or purchased
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
