package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/application/catalog"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	BaseHandler
	service *catalog.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *catalog.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

type productListQuery struct {
	dto.ListRequest
	Status     string     `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
	CategoryID *uuid.UUID `form:"category_id"`
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req catalog.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateProduct(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query productListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.CategoryID != nil {
		filter.Filters["category_id"] = *query.CategoryID
	}

	page, err := h.service.ListProducts(c.Request.Context(), rc.OrgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetProduct(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateProduct(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Discontinue handles POST /products/:id/discontinue
func (h *ProductHandler) Discontinue(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.DiscontinueProduct(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
