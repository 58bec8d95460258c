package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/application/trade"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// SalesOrderHandler serves the sales order endpoints
type SalesOrderHandler struct {
	BaseHandler
	service *trade.SalesOrderService
}

// NewSalesOrderHandler creates a new sales order handler
func NewSalesOrderHandler(service *trade.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{service: service}
}

type salesOrderListQuery struct {
	dto.ListRequest
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"customer_id"`
}

// Create handles POST /orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req trade.CreateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateSalesOrder(c.Request.Context(), rc.OrgID, rc.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query salesOrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.CustomerID != nil {
		filter.Filters["customer_id"] = *query.CustomerID
	}
	if rc.BranchID != nil {
		filter.Filters["branch_id"] = *rc.BranchID
	}

	page, err := h.service.ListSalesOrders(c.Request.Context(), rc.OrgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /orders/:id
func (h *SalesOrderHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetSalesOrder(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Ship handles POST /orders/:id/ship
func (h *SalesOrderHandler) Ship(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.ShipSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.ShipSalesOrder(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Complete handles POST /orders/:id/complete
func (h *SalesOrderHandler) Complete(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.CompleteSalesOrder(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Cancel handles POST /orders/:id/cancel
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CancelSalesOrder(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}
