package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product lifecycle operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreateProduct creates a new product. SKUs are unique per org,
// case-insensitively.
func (s *ProductService) CreateProduct(ctx context.Context, orgID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindBySKUForOrg(ctx, orgID, req.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}

	product, err := catalog.NewProduct(orgID, req.SKU, req.Name)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.applyAttributes(ctx, orgID, product, req.Barcode, req.CategoryID, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns a single product
func (s *ProductService) GetProduct(ctx context.Context, orgID, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProductBySKU returns a single product by SKU
func (s *ProductService) GetProductBySKU(ctx context.Context, orgID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKUForOrg(ctx, orgID, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts returns a paginated product listing
func (s *ProductService) ListProducts(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListProductsByCategory returns the products assigned to one category
func (s *ProductService) ListProductsByCategory(ctx context.Context, orgID, categoryID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindByCategory(ctx, orgID, categoryID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountByCategory(ctx, orgID, categoryID)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateProduct updates a product's attributes
func (s *ProductService) UpdateProduct(ctx context.Context, orgID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	create := CreateProductRequest{
		Price:    req.Price,
		Cost:     req.Cost,
		MinStock: req.MinStock,
		WeightKg: req.WeightKg,
	}
	if err := s.applyAttributes(ctx, orgID, product, req.Barcode, req.CategoryID, create); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// SetProductImage records the object key of the product image
func (s *ProductService) SetProductImage(ctx context.Context, orgID, id uuid.UUID, imageKey string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	product.SetImageKey(imageKey)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// DiscontinueProduct retires a product. Discontinued products stay visible
// in history but can no longer be ordered.
func (s *ProductService) DiscontinueProduct(ctx context.Context, orgID, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := product.Discontinue(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// DeleteProduct removes a product entirely
func (s *ProductService) DeleteProduct(ctx context.Context, orgID, id uuid.UUID) error {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}

func (s *ProductService) applyAttributes(ctx context.Context, orgID uuid.UUID, product *catalog.Product, barcode string, categoryID *uuid.UUID, req CreateProductRequest) error {
	if err := product.SetPrices(req.Price, req.Cost); err != nil {
		return err
	}
	if err := product.SetMinStock(req.MinStock); err != nil {
		return err
	}
	if err := product.SetWeight(req.WeightKg); err != nil {
		return err
	}
	if err := product.SetBarcode(barcode); err != nil {
		return err
	}

	if categoryID != nil {
		if _, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, *categoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return err
		}
	}
	product.SetCategory(categoryID)
	return nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		product.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
