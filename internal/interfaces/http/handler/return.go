package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/application/trade"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// ReturnHandler serves the return request endpoints
type ReturnHandler struct {
	BaseHandler
	service *trade.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(service *trade.ReturnService) *ReturnHandler {
	return &ReturnHandler{service: service}
}

type returnListQuery struct {
	dto.ListRequest
	Status   string     `form:"status"`
	Type     string     `form:"type" binding:"omitempty,oneof=CUSTOMER SUPPLIER"`
	SourceID *uuid.UUID `form:"source_id"`
}

// Create handles POST /returns. Creation requires a branch scope: the
// restocking on completion happens at that branch.
func (h *ReturnHandler) Create(c *gin.Context) {
	rc, branchID, ok := h.BranchScope(c)
	if !ok {
		return
	}
	var req trade.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateReturn(c.Request.Context(), rc.OrgID, branchID, rc.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /returns
func (h *ReturnHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query returnListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.Type != "" {
		filter.Filters["type"] = query.Type
	}
	if query.SourceID != nil {
		filter.Filters["source_id"] = *query.SourceID
	}
	if rc.BranchID != nil {
		filter.Filters["branch_id"] = *rc.BranchID
	}

	page, err := h.service.ListReturns(c.Request.Context(), rc.OrgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetReturn(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Approve handles POST /returns/:id/approve
func (h *ReturnHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.ApproveReturn)
}

// Reject handles POST /returns/:id/reject
func (h *ReturnHandler) Reject(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req trade.RejectReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RejectReturn(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Receive handles POST /returns/:id/receive, customer returns only
func (h *ReturnHandler) Receive(c *gin.Context) {
	h.transition(c, h.service.ReceiveReturn)
}

// Ship handles POST /returns/:id/ship, supplier returns only
func (h *ReturnHandler) Ship(c *gin.Context) {
	h.transition(c, h.service.ShipReturn)
}

// Complete handles POST /returns/:id/complete
func (h *ReturnHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.CompleteReturn)
}

// Cancel handles POST /returns/:id/cancel
func (h *ReturnHandler) Cancel(c *gin.Context) {
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

	resp, err := h.service.CancelReturn(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

func (h *ReturnHandler) transition(c *gin.Context, op func(ctx context.Context, orgID, id uuid.UUID) (*trade.ReturnResponse, error)) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := op(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}
