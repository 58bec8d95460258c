package catalog

import (
	"github.com/google/uuid"
)

// CategoryTreeNode is a category with its resolved children, used for
// tree-shaped API responses and navigation rendering.
type CategoryTreeNode struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	ParentID     *uuid.UUID          `json:"parentId,omitempty"`
	SortOrder    int                 `json:"sortOrder"`
	IsActive     bool                `json:"isActive"`
	ProductCount int64               `json:"productCount"`
	Depth        int                 `json:"depth"`
	Children     []*CategoryTreeNode `json:"children"`
}

// FlatCategory is a tree node projected back to a list entry with its depth,
// used for indented pickers and exports.
type FlatCategory struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	ParentID     *uuid.UUID `json:"parentId,omitempty"`
	SortOrder    int        `json:"sortOrder"`
	IsActive     bool       `json:"isActive"`
	ProductCount int64      `json:"productCount"`
	Depth        int        `json:"depth"`
}

// BuildCategoryTree assembles a forest from a flat category list in two
// passes. Nodes whose parent is absent from the input become roots rather
// than being dropped, so a partially loaded list still renders. Each input
// row is visited exactly once; malformed parent references cannot loop.
// Root order and child order follow input order.
func BuildCategoryTree(categories []Category, productCounts map[uuid.UUID]int64) []*CategoryTreeNode {
	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(categories))
	roots := make([]*CategoryTreeNode, 0)

	for _, c := range categories {
		nodes[c.ID] = &CategoryTreeNode{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			ParentID:     c.ParentID,
			SortOrder:    c.SortOrder,
			IsActive:     c.IsActive,
			ProductCount: productCounts[c.ID],
			Children:     make([]*CategoryTreeNode, 0),
		}
	}

	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				node.Depth = parent.Depth + 1
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// FlattenCategoryTree projects a forest to a pre-order list, tagging each
// entry with its traversal depth. The traversal depth is authoritative even
// when node Depth values are stale.
func FlattenCategoryTree(tree []*CategoryTreeNode) []FlatCategory {
	out := make([]FlatCategory, 0, len(tree))
	var walk func(nodes []*CategoryTreeNode, depth int)
	walk = func(nodes []*CategoryTreeNode, depth int) {
		for _, n := range nodes {
			out = append(out, FlatCategory{
				ID:           n.ID,
				Name:         n.Name,
				Slug:         n.Slug,
				ParentID:     n.ParentID,
				SortOrder:    n.SortOrder,
				IsActive:     n.IsActive,
				ProductCount: n.ProductCount,
				Depth:        depth,
			})
			if len(n.Children) > 0 {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(tree, 0)
	return out
}
