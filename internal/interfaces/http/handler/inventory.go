package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/application/inventory"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// InventoryHandler serves the stock level and movement endpoints
type InventoryHandler struct {
	BaseHandler
	service *inventory.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service *inventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type levelsQuery struct {
	dto.ListRequest
	ProductID *uuid.UUID `form:"product_id"`
}

type movementsQuery struct {
	dto.ListRequest
	ProductID uuid.UUID `form:"product_id" binding:"required"`
	Type      string    `form:"type"`
}

// Levels handles GET /inventory/levels for the selected branch
func (h *InventoryHandler) Levels(c *gin.Context) {
	rc, branchID, ok := h.BranchScope(c)
	if !ok {
		return
	}
	var query levelsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	if query.ProductID != nil {
		level, err := h.service.GetLevel(c.Request.Context(), rc.OrgID, branchID, *query.ProductID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.OK(c, level)
		return
	}

	filter := query.ToFilter()
	levels, err := h.service.ListBranchLevels(c.Request.Context(), rc.OrgID, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, levels)
}

// Movements handles GET /inventory/movements, the journal for one product
func (h *InventoryHandler) Movements(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query movementsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	if query.Type != "" {
		filter.Filters["type"] = query.Type
	}

	page, err := h.service.ListProductMovements(c.Request.Context(), rc.OrgID, query.ProductID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Adjust handles POST /inventory/adjust, a manual correction
func (h *InventoryHandler) Adjust(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req inventory.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.service.AdjustStock(c.Request.Context(), rc.OrgID, rc.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, movement)
}

// LowStock handles GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}

	levels, err := h.service.ListLowStock(c.Request.Context(), rc.OrgID, rc.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, levels)
}

// SetMinStock handles POST /inventory/min-stock
func (h *InventoryHandler) SetMinStock(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req inventory.SetMinStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	level, err := h.service.SetMinStock(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, level)
}
