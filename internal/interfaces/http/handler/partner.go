package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/partner"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// SupplierHandler serves the supplier directory endpoints
type SupplierHandler struct {
	BaseHandler
	service *partner.SupplierService
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(service *partner.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req partner.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateSupplier(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query dto.ListRequest
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.service.ListSuppliers(c.Request.Context(), rc.OrgID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetSupplier(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req partner.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateSupplier(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Deactivate handles DELETE /suppliers/:id
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateSupplier(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CustomerHandler serves the customer directory endpoints
type CustomerHandler struct {
	BaseHandler
	service *partner.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service *partner.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req partner.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateCustomer(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query dto.ListRequest
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.service.ListCustomers(c.Request.Context(), rc.OrgID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetCustomer(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req partner.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateCustomer(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Deactivate handles DELETE /customers/:id
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateCustomer(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
