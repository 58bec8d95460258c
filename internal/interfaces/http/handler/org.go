package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/identity"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// OrgHandler serves org administration (platform admins) and branch
// administration (org admins)
type OrgHandler struct {
	BaseHandler
	service *identity.OrgService
}

// NewOrgHandler creates a new org handler
func NewOrgHandler(service *identity.OrgService) *OrgHandler {
	return &OrgHandler{service: service}
}

// CreateOrg handles POST /orgs
func (h *OrgHandler) CreateOrg(c *gin.Context) {
	var req identity.CreateOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateOrg(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListOrgs handles GET /orgs
func (h *OrgHandler) ListOrgs(c *gin.Context) {
	var query dto.ListRequest
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.service.ListOrgs(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// GetOrg handles GET /orgs/:id
func (h *OrgHandler) GetOrg(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetOrg(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// UpdateOrg handles PUT /orgs/:id
func (h *OrgHandler) UpdateOrg(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req identity.UpdateOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateOrg(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// SuspendOrg handles POST /orgs/:id/suspend
func (h *OrgHandler) SuspendOrg(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.SuspendOrg(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ActivateOrg handles POST /orgs/:id/activate
func (h *OrgHandler) ActivateOrg(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.ActivateOrg(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateBranch handles POST /branches
func (h *OrgHandler) CreateBranch(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req identity.CreateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateBranch(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListBranches handles GET /branches
func (h *OrgHandler) ListBranches(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query dto.ListRequest
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.service.ListBranches(c.Request.Context(), rc.OrgID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// GetBranch handles GET /branches/:id
func (h *OrgHandler) GetBranch(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetBranch(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// UpdateBranch handles PUT /branches/:id
func (h *OrgHandler) UpdateBranch(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req identity.UpdateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateBranch(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// DeactivateBranch handles DELETE /branches/:id
func (h *OrgHandler) DeactivateBranch(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateBranch(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
