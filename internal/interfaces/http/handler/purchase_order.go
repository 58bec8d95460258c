package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/application/trade"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// PurchaseOrderHandler serves the procurement endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service *trade.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(service *trade.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

type purchaseOrderListQuery struct {
	dto.ListRequest
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status"`
	SupplierID    *uuid.UUID `form:"supplier_id"`
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req trade.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreatePurchaseOrder(c.Request.Context(), rc.OrgID, rc.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query purchaseOrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.PaymentStatus != "" {
		filter.Filters["payment_status"] = query.PaymentStatus
	}
	if query.SupplierID != nil {
		filter.Filters["supplier_id"] = *query.SupplierID
	}
	if rc.BranchID != nil {
		filter.Filters["branch_id"] = *rc.BranchID
	}

	page, err := h.service.ListPurchaseOrders(c.Request.Context(), rc.OrgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetPurchaseOrder(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /purchase-orders/:id, drafts only
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdatePurchaseOrder(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Submit handles POST /purchase-orders/:id/submit
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.SubmitPurchaseOrder(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.ReceivePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.ReceivePurchaseOrder(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Payment handles POST /purchase-orders/:id/payment
func (h *PurchaseOrderHandler) Payment(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
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

	resp, err := h.service.CancelPurchaseOrder(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Delete handles DELETE /purchase-orders/:id, drafts only
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePurchaseOrder(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
