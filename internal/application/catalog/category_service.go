package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// treePageSize bounds the flat category load used to build the tree. Five
// levels of a real catalog stay far below this.
const treePageSize = 5000

// CategoryService handles category tree operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreateCategory creates a category, optionally under a parent
func (s *CategoryService) CreateCategory(ctx context.Context, orgID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	var category *catalog.Category
	var err error

	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
		category, err = catalog.NewChildCategory(orgID, req.Name, req.Slug, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewCategory(orgID, req.Name, req.Slug)
		if err != nil {
			return nil, err
		}
	}

	if err := s.ensureSlugFree(ctx, orgID, category.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, category)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetCategory returns a single category
func (s *CategoryService) GetCategory(ctx context.Context, orgID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetCategoryBySlug returns a single category by its slug
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindBySlugForOrg(ctx, orgID, slug)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetCategoryTree returns the full category forest with per-node product counts
func (s *CategoryService) GetCategoryTree(ctx context.Context, orgID uuid.UUID) ([]*catalog.CategoryTreeNode, error) {
	categories, err := s.loadAll(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts, err := s.categoryRepo.ProductCounts(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return catalog.BuildCategoryTree(categories, counts), nil
}

// GetFlatCategories returns the tree projected to a depth-tagged list
func (s *CategoryService) GetFlatCategories(ctx context.Context, orgID uuid.UUID) ([]catalog.FlatCategory, error) {
	tree, err := s.GetCategoryTree(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return catalog.FlattenCategoryTree(tree), nil
}

// UpdateCategory renames a category
func (s *CategoryService) UpdateCategory(ctx context.Context, orgID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Slug); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, orgID, category.Slug, category.ID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, category)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// MoveCategory reparents a category and rebases its whole subtree. The move
// is rejected when it would push any descendant past the depth limit.
func (s *CategoryService) MoveCategory(ctx context.Context, orgID, id uuid.UUID, req MoveCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		parent, err = s.categoryRepo.FindByIDForOrg(ctx, orgID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
	}

	// Descendants must be loaded before the move, while the old path is
	// still the lookup key.
	descendants, err := s.categoryRepo.FindDescendants(ctx, orgID, category.Path)
	if err != nil {
		return nil, err
	}

	subtreeDepth := 0
	for i := range descendants {
		if d := descendants[i].Level - category.Level; d > subtreeDepth {
			subtreeDepth = d
		}
	}
	newLevel := 0
	if parent != nil {
		newLevel = parent.Level + 1
	}
	if newLevel+subtreeDepth > catalog.MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED",
			fmt.Sprintf("Moving this category would exceed the depth limit of %d levels", catalog.MaxCategoryDepth))
	}

	if err := category.MoveTo(parent); err != nil {
		return nil, err
	}

	// Rebase descendants level by level so each sees its parent's new path.
	// FindDescendants returns them ordered by level ascending.
	moved := map[uuid.UUID]*catalog.Category{category.ID: category}
	toSave := []*catalog.Category{category}
	for i := range descendants {
		d := &descendants[i]
		if d.ParentID == nil {
			continue
		}
		p, ok := moved[*d.ParentID]
		if !ok {
			s.logger.Warn("descendant with unknown parent during category move",
				zap.String("category_id", d.ID.String()))
			continue
		}
		d.RebaseUnder(p)
		moved[d.ID] = d
		toSave = append(toSave, d)
	}

	if err := s.categoryRepo.SaveAll(ctx, toSave); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, category)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ReorderCategories applies the given sibling order under one parent
func (s *CategoryService) ReorderCategories(ctx context.Context, orgID uuid.UUID, req ReorderCategoriesRequest) error {
	position := make(map[uuid.UUID]int, len(req.OrderedIDs))
	for i, id := range req.OrderedIDs {
		position[id] = i
	}

	var siblings []catalog.Category
	var err error
	if req.ParentID != nil {
		siblings, err = s.categoryRepo.FindChildren(ctx, orgID, *req.ParentID)
	} else {
		siblings, err = s.rootCategories(ctx, orgID)
	}
	if err != nil {
		return err
	}

	next := len(req.OrderedIDs)
	toSave := make([]*catalog.Category, 0, len(siblings))
	for i := range siblings {
		c := &siblings[i]
		order, listed := position[c.ID]
		if !listed {
			order = next
			next++
		}
		if c.SortOrder != order {
			c.SetSortOrder(order)
			toSave = append(toSave, c)
		}
	}
	if len(toSave) == 0 {
		return nil
	}
	return s.categoryRepo.SaveAll(ctx, toSave)
}

// SetCategoryActive activates or deactivates a category
func (s *CategoryService) SetCategoryActive(ctx context.Context, orgID, id uuid.UUID, active bool) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if active {
		category.Activate()
	} else {
		category.Deactivate()
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory deletes a category. Categories with children or with
// assigned products cannot be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, orgID, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(ctx, orgID, category.ID)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.NewDomainError("CATEGORY_HAS_CHILDREN", "Delete or move the subcategories first")
	}

	products, err := s.productRepo.CountByCategory(ctx, orgID, category.ID)
	if err != nil {
		return err
	}
	if products > 0 {
		return shared.NewDomainError("CATEGORY_HAS_PRODUCTS", "Reassign the category's products first")
	}

	return s.categoryRepo.Delete(ctx, category.ID)
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, orgID uuid.UUID, slug string, selfID uuid.UUID) error {
	existing, err := s.categoryRepo.FindBySlugForOrg(ctx, orgID, slug)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return shared.NewDomainError("ALREADY_EXISTS", "A category with this slug already exists")
}

func (s *CategoryService) loadAll(ctx context.Context, orgID uuid.UUID) ([]catalog.Category, error) {
	filter := shared.Filter{
		Page:     1,
		PageSize: treePageSize,
		OrderBy:  "sort_order",
		OrderDir: "asc",
	}
	return s.categoryRepo.FindAllForOrg(ctx, orgID, filter)
}

func (s *CategoryService) rootCategories(ctx context.Context, orgID uuid.UUID) ([]catalog.Category, error) {
	filter := shared.Filter{
		Page:     1,
		PageSize: treePageSize,
		OrderBy:  "sort_order",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"parent_id": nil},
	}
	return s.categoryRepo.FindAllForOrg(ctx, orgID, filter)
}

func (s *CategoryService) publishEvents(ctx context.Context, category *catalog.Category) {
	events := category.GetDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		category.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish category events", zap.Error(err))
	}
	category.ClearDomainEvents()
}
