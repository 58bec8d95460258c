package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
	"github.com/stockflows/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the envelope and error plumbing shared by all handlers
type BaseHandler struct{}

// OK sends a 200 success envelope
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewResponse(data))
}

// Created sends a 201 success envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewResponse(data))
}

// NoContent sends a 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends a 200 success envelope with pagination meta
func (h *BaseHandler) Paginated(c *gin.Context, data any, total int64, page, limit int) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(data, total, page, limit))
}

// Page sends a domain paginated result as a 200 envelope
func Page[T any](h *BaseHandler, c *gin.Context, page *shared.Paginated[T]) {
	h.Paginated(c, page.Items, page.Total, page.Page, page.PageSize)
}

// BadRequest sends a 400 with ERR_BAD_REQUEST
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError maps an error to the failure envelope. Domain errors carry
// their own code; anything else is an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, domainErr.Message))
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred"))
}

// BindJSON binds the request body, sending the validation envelope on failure
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.validationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters, sending the validation envelope on failure
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.validationError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) validationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrCodeValidation, "Request validation failed", details))
		return
	}
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, "Malformed request body"))
}

// PathID parses the :id path parameter, sending a 400 on failure
func (h *BaseHandler) PathID(c *gin.Context) (uuid.UUID, bool) {
	return h.pathUUID(c, "id")
}

func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, name+" is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// RequestScope returns the resolved org/branch context, sending a 401
// envelope when the route is missing the context middleware
func (h *BaseHandler) RequestScope(c *gin.Context) (middleware.RequestContext, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
		return middleware.RequestContext{}, false
	}
	return rc, true
}

// BranchScope returns the request context and its branch, requiring one to
// be selected
func (h *BaseHandler) BranchScope(c *gin.Context) (middleware.RequestContext, uuid.UUID, bool) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return rc, uuid.Nil, false
	}
	if rc.BranchID == nil {
		h.BadRequest(c, "A branch must be selected for this operation")
		return rc, uuid.Nil, false
	}
	return rc, *rc.BranchID, true
}
