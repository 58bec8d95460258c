package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/catalog"
)

// CategoryHandler serves the category tree endpoints
type CategoryHandler struct {
	BaseHandler
	service *catalog.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req catalog.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateCategory(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /categories, a flat depth-first listing
func (h *CategoryHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}

	categories, err := h.service.GetFlatCategories(c.Request.Context(), rc.OrgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, categories)
}

// Tree handles GET /categories/tree
func (h *CategoryHandler) Tree(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}

	tree, err := h.service.GetCategoryTree(c.Request.Context(), rc.OrgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, tree)
}

// Get handles GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetCategory(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req catalog.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateCategory(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Move handles POST /categories/:id/move
func (h *CategoryHandler) Move(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req catalog.MoveCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.MoveCategory(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Reorder handles POST /categories/reorder
func (h *CategoryHandler) Reorder(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req catalog.ReorderCategoriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ReorderCategories(c.Request.Context(), rc.OrgID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete handles DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
