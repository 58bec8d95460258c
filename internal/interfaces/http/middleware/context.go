package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/infrastructure/logger"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// Org/branch context headers
const (
	OrgIDHeader    = "X-Org-Id"
	BranchIDHeader = "X-Branch-Id"
)

// RequestContextKey is the gin context key for the resolved request context
const RequestContextKey = "request_context"

// RequestContext is the tenancy scope of one request, resolved from the
// session claims plus the org/branch headers. It is passed down explicitly;
// nothing below the HTTP layer reads headers or globals.
type RequestContext struct {
	OrgID    uuid.UUID
	BranchID *uuid.UUID
	UserID   uuid.UUID
	Role     identity.Role
}

// ResolveContext builds the RequestContext for authenticated routes.
// The session org is the default; platform admins may address any org via
// the X-Org-Id header, everyone else is bound to their session org.
// Staff and branch managers are pinned to their session branch.
func ResolveContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		orgID, err := claims.OrgUUID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Session is not valid")
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Session is not valid")
			return
		}
		branchID, err := claims.BranchUUID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Session is not valid")
			return
		}
		role := claims.UserRole()

		if header := c.GetHeader(OrgIDHeader); header != "" {
			requested, err := uuid.Parse(header)
			if err != nil {
				abortBadRequest(c, "X-Org-Id is not a valid UUID")
				return
			}
			if requested != orgID && role != identity.RolePlatformAdmin {
				abortForbidden(c, "Cannot act on another organization")
				return
			}
			orgID = requested
		}

		if header := c.GetHeader(BranchIDHeader); header != "" {
			requested, err := uuid.Parse(header)
			if err != nil {
				abortBadRequest(c, "X-Branch-Id is not a valid UUID")
				return
			}
			pinned := role == identity.RoleStaff || role == identity.RoleBranchManager
			if pinned && (branchID == nil || *branchID != requested) {
				abortForbidden(c, "Cannot act on another branch")
				return
			}
			branchID = &requested
		}

		rc := RequestContext{
			OrgID:    orgID,
			BranchID: branchID,
			UserID:   userID,
			Role:     role,
		}
		c.Set(RequestContextKey, rc)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOrgID(ctx, log, orgID.String())
		ctx, _ = logger.WithUserID(ctx, log, userID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(dto.ErrCodeForbidden, message))
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// GetRequestContext returns the resolved request context
func GetRequestContext(c *gin.Context) (RequestContext, bool) {
	if v, exists := c.Get(RequestContextKey); exists {
		if rc, ok := v.(RequestContext); ok {
			return rc, true
		}
	}
	return RequestContext{}, false
}
