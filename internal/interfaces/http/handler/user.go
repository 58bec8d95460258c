package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/identity"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// UserHandler serves user administration for org admins
type UserHandler struct {
	BaseHandler
	service *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *identity.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var req identity.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateUser(c.Request.Context(), rc.OrgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query dto.ListRequest
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.service.ListUsers(c.Request.Context(), rc.OrgID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), rc.OrgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req identity.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateUser(c.Request.Context(), rc.OrgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// ResetPassword handles POST /users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req identity.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), rc.OrgID, id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Deactivate handles DELETE /users/:id, revoking the user's sessions
func (h *UserHandler) Deactivate(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate handles POST /users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.ActivateUser(c.Request.Context(), rc.OrgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
