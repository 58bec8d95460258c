package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// MaxCategoryDepth is the maximum depth of the category hierarchy
const MaxCategoryDepth = 5

// Category is a node of the product classification tree
type Category struct {
	shared.OrgAggregateRoot
	Name      string     `gorm:"type:varchar(100);not null"`
	Slug      string     `gorm:"type:varchar(120);not null;index:idx_categories_org_slug,unique"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	Path      string     `gorm:"type:varchar(500);not null;index"` // materialized path of IDs
	Level     int        `gorm:"not null;default:0"`
	SortOrder int        `gorm:"not null;default:0"`
	IsActive  bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(orgID uuid.UUID, name, slug string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	slug, err := normalizeSlug(slug, name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Slug:             slug,
		IsActive:         true,
		Level:            0,
	}
	category.Path = category.ID.String()

	category.AddDomainEvent(NewCategoryCreatedEvent(category))
	return category, nil
}

// NewChildCategory creates a new category under a parent
func NewChildCategory(orgID uuid.UUID, name, slug string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.OrgID != orgID {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category belongs to a different org")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Category depth cannot exceed 5 levels")
	}

	category, err := NewCategory(orgID, name, slug)
	if err != nil {
		return nil, err
	}
	category.ParentID = &parent.ID
	category.Level = parent.Level + 1
	category.Path = parent.Path + "/" + category.ID.String()
	return category, nil
}

// Update updates the category name and slug
func (c *Category) Update(name, slug string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	slug, err := normalizeSlug(slug, name)
	if err != nil {
		return err
	}

	c.Name = name
	c.Slug = slug
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))
	return nil
}

// MoveTo reparents the category. A nil parent makes it a root. Moving a
// category under its own descendant would create a cycle and is rejected.
func (c *Category) MoveTo(parent *Category) error {
	if parent == nil {
		c.ParentID = nil
		c.Level = 0
		c.Path = c.ID.String()
	} else {
		if parent.ID == c.ID {
			return shared.NewDomainError("INVALID_PARENT", "Category cannot be its own parent")
		}
		if c.IsAncestorOf(parent) {
			return shared.NewDomainError("INVALID_PARENT", "Cannot move a category under its own descendant")
		}
		if parent.Level >= MaxCategoryDepth-1 {
			return shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Category depth cannot exceed 5 levels")
		}
		c.ParentID = &parent.ID
		c.Level = parent.Level + 1
		c.Path = parent.Path + "/" + c.ID.String()
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryMovedEvent(c))
	return nil
}

// RebaseUnder recomputes path and level after an ancestor moved
func (c *Category) RebaseUnder(parent *Category) {
	c.Path = parent.Path + "/" + c.ID.String()
	c.Level = parent.Level + 1
	c.UpdatedAt = time.Now()
}

// SetSortOrder sets the display order among siblings
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate makes the category visible
func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate hides the category without deleting it
func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsRoot reports whether this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsAncestorOf reports whether this category is an ancestor of other
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	}
	if slug == "" || len(slug) > 120 || !slugPattern.MatchString(slug) {
		return "", shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters, digits and dashes")
	}
	return slug, nil
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
